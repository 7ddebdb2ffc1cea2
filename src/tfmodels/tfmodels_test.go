package tfmodels

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	"github.com/tensorflow/tensorflow/tensorflow/go/op"
)

func ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %s", err.Error())
	}
}

func equals(tb testing.TB, act, exp interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(exp, act) {
		tb.Fatalf("exp: %#v\n\tgot: %#v", exp, act)
	}
}

func TestNestAndFlatten(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}

	nested := nest([]int64{1, 2, 1, 3}, values)
	equals(t, nested, [][][][]float32{{{{1, 2, 3}}, {{4, 5, 6}}}})

	flat, err := flatten(nested)
	ok(t, err)
	equals(t, flat, values)
}

func TestFlattenRejectsOtherTypes(t *testing.T) {
	_, err := flatten([][]int32{{1, 2}})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestLoadModelWithoutModelInfo(t *testing.T) {
	dir, err := ioutil.TempDir("", "tfmodels")
	ok(t, err)
	defer os.RemoveAll(dir)

	_, err = LoadModel(dir)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestLoadModelRequiresOperationNames(t *testing.T) {
	dir, err := ioutil.TempDir("", "tfmodels")
	ok(t, err)
	defer os.RemoveAll(dir)

	ok(t, ioutil.WriteFile(filepath.Join(dir, modelInfoFile), []byte(`{"build": 1}`), 0644))

	_, err = LoadModel(dir)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestNetworksCheckInputCount(t *testing.T) {
	one := &Model{inputs: make([]tf.Output, 1)}
	two := &Model{inputs: make([]tf.Output, 2)}

	_, err := NewStyleEncoder(two)
	if err == nil {
		t.Fatal("expected an error")
	}
	_, err = NewTransformer(one)
	if err == nil {
		t.Fatal("expected an error")
	}

	_, err = NewStyleEncoder(one)
	ok(t, err)
	_, err = NewTransformer(two)
	ok(t, err)
}

func TestLoaderLoadsOnce(t *testing.T) {
	var loaded []string
	loader := NewLoader("/models")
	loader.loadModel = func(basePath string) (*Model, error) {
		loaded = append(loaded, basePath)
		if filepath.Base(basePath) == styleModelDir {
			return &Model{inputs: make([]tf.Output, 1), info: datastructures.ModelInfo{Build: 1, OutputShape: []int64{1, 1, 1, 100}}}, nil
		}
		return &Model{inputs: make([]tf.Output, 2), info: datastructures.ModelInfo{Build: 2}}, nil
	}

	first, err := loader.Pipeline()
	ok(t, err)
	second, err := loader.Pipeline()
	ok(t, err)

	if first != second {
		t.Fatal("expected the same pipeline")
	}
	equals(t, loaded, []string{"/models/style", "/models/transformer"})
	equals(t, len(loader.ModelInfo()), 2)
	equals(t, loader.ModelInfo()[1].Build, int32(2))
	loader.Close()
}

func TestLoaderRemembersError(t *testing.T) {
	calls := 0
	loader := NewLoader("/models")
	loader.loadModel = func(basePath string) (*Model, error) {
		calls++
		return nil, errors.New("no such model")
	}

	_, err := loader.Pipeline()
	if err == nil {
		t.Fatal("expected an error")
	}
	_, err = loader.Pipeline()
	if err == nil {
		t.Fatal("expected an error")
	}
	equals(t, calls, 1)
	equals(t, len(loader.ModelInfo()), 0)
}

// identityModel writes a graph with the given number of float inputs whose
// output is the input at index out, and loads it back with LoadModel.
func identityModel(t *testing.T, inputs int, out int) *Model {
	t.Helper()

	s := op.NewScope()
	var placeholders []tf.Output
	var inputOps []string
	for i := 0; i < inputs; i++ {
		p := op.Placeholder(s.SubScope("input"), tf.Float)
		placeholders = append(placeholders, p)
		inputOps = append(inputOps, p.Op.Name())
	}
	output := op.Identity(s.SubScope("output"), placeholders[out])
	graph, err := s.Finalize()
	ok(t, err)

	dir, err := ioutil.TempDir("", "tfmodels")
	ok(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	f, err := os.Create(filepath.Join(dir, graphFile))
	ok(t, err)
	_, err = graph.WriteTo(f)
	ok(t, err)
	ok(t, f.Close())

	info, err := json.Marshal(datastructures.ModelInfo{Build: 7, InputOps: inputOps, OutputOp: output.Op.Name()})
	ok(t, err)
	ok(t, ioutil.WriteFile(filepath.Join(dir, modelInfoFile), info, 0644))

	model, err := LoadModel(dir)
	ok(t, err)
	t.Cleanup(func() { model.Close() })
	return model
}

func testImage(width int, height int) *stylize.Image {
	img := stylize.NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = float32(i%7) / 7
	}
	return img
}

func TestStyleEncoderKeepsBatchShape(t *testing.T) {
	model := identityModel(t, 1, 0)
	equals(t, model.Info().Build, int32(7))

	encoder, err := NewStyleEncoder(model)
	ok(t, err)

	img := testImage(3, 2)
	bottleneck, err := encoder.Encode(img)
	ok(t, err)
	equals(t, bottleneck.Shape(), []int64{1, 2, 3, 3})
	equals(t, bottleneck.Values(), img.Pix)
}

func TestTransformerDropsBatchDimension(t *testing.T) {
	transformer, err := NewTransformer(identityModel(t, 2, 0))
	ok(t, err)

	content := testImage(5, 4)
	bottleneck, err := stylize.NewTensor([]int64{1, 1, 1, 4}, []float32{1, 2, 3, 4}, nil)
	ok(t, err)

	stylized, err := transformer.Transform(content, bottleneck)
	ok(t, err)
	equals(t, stylized, content)
}

func TestTransformerRejectsNonImageOutput(t *testing.T) {
	// the output is the bottleneck, which has four channels
	transformer, err := NewTransformer(identityModel(t, 2, 1))
	ok(t, err)

	bottleneck, err := stylize.NewTensor([]int64{1, 1, 1, 4}, []float32{1, 2, 3, 4}, nil)
	ok(t, err)

	_, err = transformer.Transform(testImage(2, 2), bottleneck)
	if err == nil {
		t.Fatal("expected an error")
	}
}
