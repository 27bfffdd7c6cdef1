package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried by LogChangedMessage.
const (
	OpRecordCreated   = "record_created"
	OpRecordUpdated   = "record_updated"
	OpRecordDeleted   = "record_deleted"
	OpRecordsImported = "records_imported"
	OpVehicleDeleted  = "vehicle_deleted"
)

// LogChangedMessage tells the export worker that a vehicle's fuel log
// changed. It carries only identifiers; the worker reads the current state
// from the database.
type LogChangedMessage struct {
	VehicleID int64     `json:"vehicle_id"`
	RecordID  int64     `json:"record_id,omitempty"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLogChangedMessage creates a change message stamped with the current time.
func NewLogChangedMessage(vehicleID, recordID int64, op string) *LogChangedMessage {
	return &LogChangedMessage{
		VehicleID: vehicleID,
		RecordID:  recordID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LogChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LogChangedMessageFromJSON creates a message from JSON bytes
func LogChangedMessageFromJSON(data []byte) (*LogChangedMessage, error) {
	var msg LogChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
