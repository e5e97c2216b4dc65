package surfaceplan

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/legplan/contactplan/utils"
)

// Defaults used when a field is not set.
const (
	DefaultStep           = 1.0
	DefaultWindowSize     = 0.5
	DefaultMaxSurfaceArea = 0.1 // about a fourth of the foot area
	DefaultAffordance     = "Support"
)

// Options configures a planning run.
type Options struct {
	// Step is the distance along the path covered by one phase.
	Step float64 `json:"step"`
	// WindowSize is the distance between the sub-samples of a windowed phase.
	WindowSize float64 `json:"window_size"`
	// MaxSurfaceArea is the area an intersection polygon must exceed to be kept as is.
	MaxSurfaceArea  float64 `json:"max_surface_area"`
	UseIntersection bool    `json:"use_intersection"`
	Policy          Policy  `json:"policy"`
	// PathID selects the path to plan on; the last path when unset.
	PathID     *int   `json:"path_id,omitempty"`
	Affordance string `json:"affordance"`
	// Parallelism bounds the number of concurrent path and collision queries. 1 queries strictly in
	// path order.
	Parallelism int `json:"parallelism"`
}

// DefaultOptions returns the options of a per-sample run on the last path.
func DefaultOptions() Options {
	return Options{
		Step:           DefaultStep,
		WindowSize:     DefaultWindowSize,
		MaxSurfaceArea: DefaultMaxSurfaceArea,
		Policy:         PerSample,
		Affordance:     DefaultAffordance,
		Parallelism:    1,
	}
}

// Validate returns every problem with the options, combined.
func (o *Options) Validate(path string) error {
	var err error
	if o.Step <= 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.Errorf("step must be positive, got %f", o.Step)))
	}
	if o.Policy == Windowed && o.WindowSize <= 0 {
		err = multierr.Append(err,
			utils.NewConfigValidationError(path, errors.Errorf("window_size must be positive, got %f", o.WindowSize)))
	}
	if o.MaxSurfaceArea < 0 {
		err = multierr.Append(err,
			utils.NewConfigValidationError(path, errors.Errorf("max_surface_area cannot be negative, got %f", o.MaxSurfaceArea)))
	}
	if o.Policy != PerSample && o.Policy != Windowed {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.Errorf("unknown policy %d", o.Policy)))
	}
	if o.PathID != nil && *o.PathID < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.Errorf("path_id cannot be negative, got %d", *o.PathID)))
	}
	if o.Affordance == "" {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "affordance"))
	}
	if o.Parallelism < 0 {
		err = multierr.Append(err,
			utils.NewConfigValidationError(path, errors.Errorf("parallelism cannot be negative, got %d", o.Parallelism)))
	}
	return err
}

// OptionsFromAttributes decodes options from a JSON attribute map over the defaults. Unknown keys
// are an error.
func OptionsFromAttributes(attributes map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &opts,
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return Options{}, errors.Wrap(err, "decoding planner options")
	}
	return opts, nil
}
