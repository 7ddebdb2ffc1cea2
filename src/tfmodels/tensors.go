package tfmodels

import (
	"reflect"

	"github.com/bbernhard/styletransfer-playground/src/stylize"
	"github.com/pkg/errors"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
)

var float32Type = reflect.TypeOf(float32(0))

// imageTensor turns img into a batch of one image, shape [1, height, width, 3].
func imageTensor(img *stylize.Image) (*tf.Tensor, error) {
	return tf.NewTensor(nest([]int64{1, int64(img.Height), int64(img.Width), 3}, img.Pix))
}

func bottleneckTensor(b *stylize.Tensor) (*tf.Tensor, error) {
	return tf.NewTensor(nest(b.Shape(), b.Values()))
}

// nest arranges values into nested float32 slices of the given shape, the
// representation tf.NewTensor expects.
func nest(shape []int64, values []float32) interface{} {
	typ := float32Type
	for range shape {
		typ = reflect.SliceOf(typ)
	}
	return build(typ, shape, values).Interface()
}

func build(typ reflect.Type, shape []int64, values []float32) reflect.Value {
	if len(shape) == 0 {
		return reflect.ValueOf(values[0])
	}

	n := int(shape[0])
	res := reflect.MakeSlice(typ, n, n)
	if n == 0 {
		return res
	}
	stride := len(values) / n
	for i := 0; i < n; i++ {
		res.Index(i).Set(build(typ.Elem(), shape[1:], values[i*stride:(i+1)*stride]))
	}
	return res
}

// flatten is the inverse of nest.
func flatten(value interface{}) ([]float32, error) {
	var res []float32
	err := flattenInto(reflect.ValueOf(value), &res)
	return res, err
}

func flattenInto(v reflect.Value, res *[]float32) error {
	switch v.Kind() {
	case reflect.Float32:
		*res = append(*res, float32(v.Float()))
		return nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := flattenInto(v.Index(i), res); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unsupported tensor value of type %s", v.Type())
	}
}
