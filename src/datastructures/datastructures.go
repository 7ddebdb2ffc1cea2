package datastructures

type ModelInfo struct {
	Build     int32    `json:"build"`
	Created   string   `json:"created"`
	TrainedOn []string `json:"trained_on"`
	BasedOn   string   `json:"based_on"`
	InputOps  []string `json:"input_ops"`
	OutputOp  string   `json:"output_op"`

	OutputShape []int64 `json:"output_shape,omitempty"`
}

type StylizeRequest struct {
	Uuid             string  `json:"uuid"`
	ContentFilename  string  `json:"content_filename"`
	ContentTemporary bool    `json:"content_temporary"`
	StyleFilename    string  `json:"style_filename"`
	StyleTemporary   bool    `json:"style_temporary"`
	ContentSize      int     `json:"content_size"`
	StyleSize        int     `json:"style_size"`
	StyleRatio       float64 `json:"style_ratio"`
	Created          int64   `json:"created"`
}

type StylizeResult struct {
	Uuid       string      `json:"uuid"`
	Image      string      `json:"image,omitempty"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	StyleRatio float64     `json:"style_ratio"`
	ModelInfo  []ModelInfo `json:"model_info,omitempty"`
	Error      string      `json:"error"`
}

type Asset struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	File string `json:"-" yaml:"file"`
}

type RandomSettings struct {
	StyleRatio  int `json:"style_ratio"`
	ContentSize int `json:"content_size"`
	StyleSize   int `json:"style_size"`
}
