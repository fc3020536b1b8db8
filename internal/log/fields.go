package log

// Common field names for structured logging.
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldSubscriptionID = "subscription_id"
	FieldSubscription   = "subscription"
	FieldStatus         = "status"
	FieldAmount         = "amount"
	FieldFile           = "file"
	FieldCount          = "count"
	FieldDBPath         = "db_path"
	FieldAddr           = "addr"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentImport  = "import"
	ComponentDaemon  = "daemon"
	ComponentHTTP    = "http"
	ComponentTUI     = "tui"
	ComponentSavings = "savings"
)
