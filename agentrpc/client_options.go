package agentrpc

// ClientConfig holds engine client configuration.
type ClientConfig struct {
	StderrHandler   func([]byte)
	Env             map[string]string
	BinaryPath      string
	BinaryArgs      []string
	EventBufferSize int
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		BinaryPath:      "cowork-engine",
		EventBufferSize: 100,
	}
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*ClientConfig)

// WithBinaryPath sets the path to the engine binary.
func WithBinaryPath(path string) ClientOption {
	return func(c *ClientConfig) { c.BinaryPath = path }
}

// WithBinaryArgs sets the command-line arguments for the engine binary.
func WithBinaryArgs(args ...string) ClientOption {
	return func(c *ClientConfig) { c.BinaryArgs = args }
}

// WithEventBufferSize sets the event channel buffer size.
func WithEventBufferSize(size int) ClientOption {
	return func(c *ClientConfig) { c.EventBufferSize = size }
}

// WithStderrHandler sets a handler for engine stderr output.
func WithStderrHandler(h func([]byte)) ClientOption {
	return func(c *ClientConfig) { c.StderrHandler = h }
}

// WithEnv sets additional environment variables for the engine subprocess.
func WithEnv(env map[string]string) ClientOption {
	return func(c *ClientConfig) { c.Env = env }
}
