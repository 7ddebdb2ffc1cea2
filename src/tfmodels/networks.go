package tfmodels

import (
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	"github.com/pkg/errors"
)

// StyleEncoder runs the style network: image in, bottleneck out.
type StyleEncoder struct {
	model *Model
}

func NewStyleEncoder(model *Model) (*StyleEncoder, error) {
	if len(model.inputs) != 1 {
		return nil, errors.Errorf("style network needs exactly one input, model has %d", len(model.inputs))
	}
	return &StyleEncoder{model: model}, nil
}

func (e *StyleEncoder) Encode(img *stylize.Image) (*stylize.Tensor, error) {
	input, err := imageTensor(img)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create tensor from image")
	}

	output, err := e.model.run(input)
	if err != nil {
		return nil, err
	}

	values, err := flatten(output.Value())
	if err != nil {
		return nil, err
	}
	return stylize.NewTensor(output.Shape(), values, nil)
}

// Transformer runs the transformer network: content image and bottleneck
// in, stylized image out.
type Transformer struct {
	model *Model
}

func NewTransformer(model *Model) (*Transformer, error) {
	if len(model.inputs) != 2 {
		return nil, errors.Errorf("transformer network needs exactly two inputs, model has %d", len(model.inputs))
	}
	return &Transformer{model: model}, nil
}

func (t *Transformer) Transform(content *stylize.Image, bottleneck *stylize.Tensor) (*stylize.Image, error) {
	image, err := imageTensor(content)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create tensor from image")
	}
	b, err := bottleneckTensor(bottleneck)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create tensor from bottleneck")
	}

	output, err := t.model.run(image, b)
	if err != nil {
		return nil, err
	}

	// [1, height, width, 3] -> [height, width, 3]
	shape := output.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[3] != 3 {
		return nil, errors.Errorf("unexpected transformer output shape %v", shape)
	}
	values, err := flatten(output.Value())
	if err != nil {
		return nil, err
	}
	return &stylize.Image{Width: int(shape[2]), Height: int(shape[1]), Pix: values}, nil
}
