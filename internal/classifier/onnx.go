package classifier

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes a single-input single-output classification model.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	InputName   string
	OutputName  string
	// Classes is the width of the output tensor.
	Classes int
}

// ONNXBackend runs inference through ONNX Runtime.
type ONNXBackend struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	classes int
}

const errAlreadyInitialized = "the ONNX runtime is already initialized"

// NewONNXBackend loads the model and creates an inference session.
func NewONNXBackend(config ONNXConfig) (*ONNXBackend, error) {
	if config.ModelPath == "" {
		return nil, errors.New("onnx: model path is required")
	}
	if config.Classes <= 0 {
		return nil, fmt.Errorf("onnx: invalid class count %d", config.Classes)
	}

	if config.LibraryPath != "" {
		ort.SetSharedLibraryPath(config.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		if err.Error() != errAlreadyInitialized {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.OutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ONNXBackend{session: session, classes: config.Classes}, nil
}

// Infer runs one forward pass with input shaped [1, len(input)].
func (b *ONNXBackend) Infer(input []float32) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil, errors.New("onnx: backend closed")
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(input))), input)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(b.classes)))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := b.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	return append([]float32(nil), outputTensor.GetData()...), nil
}

// Close destroys the session.
func (b *ONNXBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	err := b.session.Destroy()
	b.session = nil
	return err
}
