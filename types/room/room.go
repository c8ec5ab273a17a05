package room

// ChangeStateRequest drives the room state machine from the API. Notes are
// optional operator context ("AC leaking", "deep clean").
type ChangeStateRequest struct {
	Notes string `json:"notes,omitempty"`
}
