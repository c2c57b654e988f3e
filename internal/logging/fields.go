package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for queue job identifiers.
	FieldJobID = "job_id"
	// FieldSourcePath is the standardized structured logging key for job source files.
	FieldSourcePath = "source_path"
	// FieldBatchState is the standardized structured logging key for the dispatcher state.
	FieldBatchState = "batch_state"
	// FieldEventType tags log lines that mark notable lifecycle events.
	FieldEventType = "event_type"
	// FieldErrorHint carries an operator-facing suggestion next to an error.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the consequence of a failure for the operator.
	FieldImpact = "impact"
	// FieldEngineMessage is the structured logging key for raw worker message types.
	FieldEngineMessage = "engine_message_type"
)
