package models

// MessageRecord is the body of a benchmark message. Field order defines the
// order of keys on the wire.
type MessageRecord struct {
	ID      string `json:"id"`
	AppID   string `json:"aid"`
	AppName string `json:"an"`
	Body    string `json:"t"`
	Created string `json:"ds"`
	Flag    int    `json:"f"`
	Counter int    `json:"counter"`
}

// Envelope is a single step of a pipeline: a 1-based index, the topic and the
// serialized payload.
type Envelope struct {
	Index   int
	Topic   string
	Payload string
}

// WithPayload returns a copy of the envelope carrying payload.
func (e Envelope) WithPayload(payload string) Envelope {
	e.Payload = payload
	return e
}
