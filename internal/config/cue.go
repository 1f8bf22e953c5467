package config

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// parseCUE evaluates a CUE file and decodes the resulting value. The file
// may constrain or compute fields; only concrete values are decoded.
func parseCUE(file string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(file))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(file, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(file, err)
	}

	cfg := &Config{}
	if err := v.Decode(cfg); err != nil {
		return nil, formatCUEError(file, err)
	}
	return cfg, nil
}

// formatCUEError keeps the first reported position of a CUE error.
func formatCUEError(file string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeParse, Message: errors.Details(err, nil), File: file}
	for _, e := range errors.Errors(err) {
		le.Message = e.Error()
		for _, pos := range errors.Positions(e) {
			if pos.IsValid() {
				le.Line = pos.Line()
				le.Column = pos.Column()
				return le
			}
		}
		return le
	}
	return le
}
