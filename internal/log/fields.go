package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
	FieldCategoryID  = "category_id"
	FieldGoalID      = "goal_id"
	FieldBudgetID    = "budget_id"
	FieldEventType   = "event_type"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentGoals   = "goals"
	ComponentNotify  = "notify"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
)
