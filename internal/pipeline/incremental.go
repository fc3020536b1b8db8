package pipeline

import (
	"os"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/source"
)

// diffTracked partitions files into those that must be parsed and those whose
// mtime and size match the tracker. The returned states line up with
// toParse and carry the current stat for each file.
func diffTracked(files []source.DiscoveredFile, tracked map[string]model.TrackedFile) ([]source.DiscoveredFile, []model.TrackedFile, int) {
	var (
		toParse []source.DiscoveredFile
		states  []model.TrackedFile
		hits    int
	)

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		state := model.TrackedFile{
			Path:      f.Path,
			MtimeNs:   info.ModTime().UnixNano(),
			SizeBytes: info.Size(),
		}

		if cached, ok := tracked[f.Path]; ok && cached.MtimeNs == state.MtimeNs && cached.SizeBytes == state.SizeBytes {
			hits++
			continue
		}
		toParse = append(toParse, f)
		states = append(states, state)
	}
	return toParse, states, hits
}
