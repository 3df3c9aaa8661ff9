package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Guarda los mensajes del
// ultimo Complete para poder inspeccionar el prompt armado.
type MockClient struct {
	Response     string
	Err          error
	LastMessages []Message
	Calls        int
}

func (m *MockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	m.Calls++
	m.LastMessages = messages
	return m.Response, m.Err
}
