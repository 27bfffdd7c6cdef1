package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldVehicleID   = "vehicle_id"
	FieldVehicleName = "vehicle_name"
	FieldRecordID    = "record_id"
	FieldOdometer    = "odometer"
	FieldVolume      = "volume"
	FieldCost        = "cost"
)
