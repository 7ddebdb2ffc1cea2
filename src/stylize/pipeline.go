package stylize

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type StyleEncoder interface {
	Encode(img *Image) (*Tensor, error)
}

type Transformer interface {
	Transform(content *Image, bottleneck *Tensor) (*Image, error)
}

// ClampRatio maps a style ratio into [0, 1]. NaN is treated as "style only".
func ClampRatio(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio > 1.0 {
		return 1.0
	}
	if ratio < 0.0 {
		return 0.0
	}
	return ratio
}

type Option func(p *Pipeline)

// WithConcurrentEncoding encodes the style and the content image in parallel
// whenever both bottlenecks are needed.
func WithConcurrentEncoding() Option {
	return func(p *Pipeline) {
		p.concurrentEncoding = true
	}
}

// WithBottleneckShape rejects encoder outputs of any other shape.
func WithBottleneckShape(shape []int64) Option {
	return func(p *Pipeline) {
		p.bottleneckShape = append([]int64(nil), shape...)
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Pipeline blends a style bottleneck with the content's own (identity)
// bottleneck and runs the transformer on the result. Encoder and transformer
// are shared between calls and must be safe for concurrent use.
type Pipeline struct {
	encoder            StyleEncoder
	transformer        Transformer
	concurrentEncoding bool
	bottleneckShape    []int64
	logger             *log.Entry
}

func NewPipeline(encoder StyleEncoder, transformer Transformer, opts ...Option) *Pipeline {
	p := &Pipeline{
		encoder:     encoder,
		transformer: transformer,
		logger:      log.WithField("component", "stylize"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stylize renders content in the style of style. ratio is expected to be
// clamped already (see ClampRatio); with ratio == 1.0 the content image is
// never encoded.
func (p *Pipeline) Stylize(content *Image, style *Image, ratio float64) (*Image, error) {
	var bottleneck *Tensor
	if ratio == 1.0 {
		styleBottleneck, err := p.encode("style", style)
		if err != nil {
			return nil, err
		}
		bottleneck = styleBottleneck
	} else {
		styleBottleneck, identityBottleneck, err := p.encodeBoth(content, style)
		if err != nil {
			return nil, err
		}

		bottleneck, err = p.blend(styleBottleneck, identityBottleneck, ratio)
		styleBottleneck.Release()
		identityBottleneck.Release()
		if err != nil {
			return nil, err
		}
	}
	defer bottleneck.Release()

	// only reached unencoded when ratio == 1.0
	if err := content.Validate(); err != nil {
		return nil, &TransformError{Err: err}
	}

	p.logger.Debug("[Stylize] Stylizing image")
	stylized, err := p.transformer.Transform(content, bottleneck)
	if err != nil {
		var transformErr *TransformError
		if errors.As(err, &transformErr) {
			return nil, err
		}
		return nil, &TransformError{Err: err}
	}
	if stylized == nil {
		return nil, &TransformError{Err: fmt.Errorf("transformer returned no image")}
	}

	return stylized, nil
}

func (p *Pipeline) encode(input string, img *Image) (*Tensor, error) {
	if err := img.Validate(); err != nil {
		return nil, &EncodingError{Input: input, Err: err}
	}

	p.logger.Debug("[Stylize] Encoding ", input, " image")
	bottleneck, err := p.encoder.Encode(img)
	if err != nil {
		var encodingErr *EncodingError
		if errors.As(err, &encodingErr) {
			return nil, err
		}
		return nil, &EncodingError{Input: input, Err: err}
	}
	if bottleneck == nil {
		return nil, &EncodingError{Input: input, Err: fmt.Errorf("encoder returned no bottleneck")}
	}

	if p.bottleneckShape != nil && !sameShape(bottleneck.shape, p.bottleneckShape) {
		bottleneck.Release()
		return nil, &EncodingError{
			Input: input,
			Err:   fmt.Errorf("bottleneck has shape %v, expected %v", bottleneck.shape, p.bottleneckShape),
		}
	}
	return bottleneck, nil
}

func (p *Pipeline) encodeBoth(content *Image, style *Image) (*Tensor, *Tensor, error) {
	if !p.concurrentEncoding {
		styleBottleneck, err := p.encode("style", style)
		if err != nil {
			return nil, nil, err
		}
		identityBottleneck, err := p.encode("content", content)
		if err != nil {
			styleBottleneck.Release()
			return nil, nil, err
		}
		return styleBottleneck, identityBottleneck, nil
	}

	var styleBottleneck, identityBottleneck *Tensor
	var g errgroup.Group
	g.Go(func() error {
		var err error
		styleBottleneck, err = p.encode("style", style)
		return err
	})
	g.Go(func() error {
		var err error
		identityBottleneck, err = p.encode("content", content)
		return err
	})
	if err := g.Wait(); err != nil {
		styleBottleneck.Release()
		identityBottleneck.Release()
		return nil, nil, err
	}
	return styleBottleneck, identityBottleneck, nil
}

func (p *Pipeline) blend(style *Tensor, identity *Tensor, ratio float64) (*Tensor, error) {
	p.logger.Debug("[Stylize] Blending bottlenecks with ratio ", ratio)
	blended, err := Blend(style, identity, ratio)
	if err != nil {
		return nil, &EncodingError{Input: "content", Err: err}
	}
	return blended, nil
}
