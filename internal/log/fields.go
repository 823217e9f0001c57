package log

import "time"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldCommand       = "command"
	FieldSubcommand    = "subcommand"
	FieldUserID        = "user_id"
	FieldInteractionID = "interaction_id"
	FieldChunks        = "chunks"
	FieldPeriodStart   = "period_start"
	FieldPeriodEnd     = "period_end"
	FieldHours         = "hours"
	FieldRecipients    = "recipients"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDiscord   = "discord"
	ComponentHours     = "hours"
	ComponentReport    = "report"
	ComponentScheduler = "scheduler"
	ComponentMail      = "mail"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpExecute  = "execute"
	OpRespond  = "respond"
	OpFollowUp = "follow_up"
	OpVerify   = "verify"
	OpSend     = "send"
	OpExport   = "export"
	OpDeploy   = "deploy"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error field when err is non-nil
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCommand adds slash command fields
func (f LogFields) WithCommand(command, userID, interactionID string) LogFields {
	f[FieldCommand] = command
	f[FieldUserID] = userID
	f[FieldInteractionID] = interactionID
	return f
}

// WithPeriod adds billing period bounds
func (f LogFields) WithPeriod(startKey, endKey string) LogFields {
	f[FieldPeriodStart] = startKey
	f[FieldPeriodEnd] = endKey
	return f
}

func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, d time.Duration) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = d.Milliseconds()
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
