package tfmodels

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
)

const (
	graphFile     = "graph.pb"
	modelInfoFile = "model_info.json"
)

// Model is a frozen TensorFlow graph together with an open session. A
// session can be run from several goroutines at once.
type Model struct {
	graph   *tf.Graph
	session *tf.Session
	info    datastructures.ModelInfo
	inputs  []tf.Output
	output  tf.Output
}

// LoadModel reads model_info.json and graph.pb from basePath.
func LoadModel(basePath string) (*Model, error) {
	data, err := ioutil.ReadFile(filepath.Join(basePath, modelInfoFile))
	if err != nil {
		log.Debug("[Loading Model] Couldn't read model info: ", err.Error())
		return nil, errors.Wrap(err, "couldn't read model info")
	}

	var info datastructures.ModelInfo
	err = json.Unmarshal(data, &info)
	if err != nil {
		log.Debug("[Loading Model] Couldn't parse model info: ", err.Error())
		return nil, errors.Wrap(err, "couldn't parse model info")
	}
	if len(info.InputOps) == 0 || info.OutputOp == "" {
		return nil, errors.Errorf("model info in %s doesn't name input and output operations", basePath)
	}

	// Load the serialized GraphDef from a file.
	model, err := ioutil.ReadFile(filepath.Join(basePath, graphFile))
	if err != nil {
		log.Debug("[Loading Model] Couldn't read model: ", err.Error())
		return nil, errors.Wrap(err, "couldn't read model")
	}

	graph := tf.NewGraph()
	if err := graph.Import(model, ""); err != nil {
		log.Debug("[Loading Model] Couldn't construct graph: ", err.Error())
		return nil, errors.Wrap(err, "couldn't construct graph")
	}

	m := &Model{graph: graph, info: info}
	for _, name := range info.InputOps {
		output, err := m.operation(name)
		if err != nil {
			return nil, err
		}
		m.inputs = append(m.inputs, output)
	}
	m.output, err = m.operation(info.OutputOp)
	if err != nil {
		return nil, err
	}

	m.session, err = tf.NewSession(graph, nil)
	if err != nil {
		log.Debug("[Loading Model] Couldn't start session: ", err.Error())
		return nil, errors.Wrap(err, "couldn't start session")
	}

	return m, nil
}

func (m *Model) operation(name string) (tf.Output, error) {
	op := m.graph.Operation(name)
	if op == nil {
		return tf.Output{}, errors.Errorf("graph has no operation %q", name)
	}
	return op.Output(0), nil
}

func (m *Model) Info() datastructures.ModelInfo {
	return m.info
}

func (m *Model) run(inputs ...*tf.Tensor) (*tf.Tensor, error) {
	if len(inputs) != len(m.inputs) {
		return nil, errors.Errorf("model expects %d inputs, got %d", len(m.inputs), len(inputs))
	}

	feeds := make(map[tf.Output]*tf.Tensor, len(inputs))
	for i, input := range inputs {
		feeds[m.inputs[i]] = input
	}

	output, err := m.session.Run(feeds, []tf.Output{m.output}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't run model")
	}
	return output[0], nil
}

func (m *Model) Close() error {
	if m.session == nil {
		return nil
	}
	return m.session.Close()
}
