package alerts

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"emberwatch/cinder/pkg/engine"
)

// Event type values produced by the generator. These mirror the field
// vocabulary of the Portuguese civil-protection feeds the classifier
// was built around.
const (
	EventNone         = "nenhum"
	EventCampfire     = "fogueira_descontrolada"
	EventDryLightning = "raio_seco"
)

// DefaultZones are the reporting zones used when none are configured.
var DefaultZones = []string{"Serra da Estrela", "Monchique", "Peneda-Gerês", "Sintra"}

// GeneratorConfig configures synthetic alert generation.
type GeneratorConfig struct {
	// Records is the number of alerts to generate.
	// Default: 100.
	Records int

	// Start is the timestamp of the first alert; consecutive alerts
	// step by Interval.
	// Default: 2024-07-01 00:00 UTC.
	Start time.Time

	// Interval is the spacing between consecutive alerts.
	// Default: 3h.
	Interval time.Duration

	// Seed seeds the random source. Zero derives a seed from the
	// clock; any other value makes the output reproducible.
	Seed int64

	// Zones are the reporting zones to draw from.
	// Default: DefaultZones.
	Zones []string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Records:  100,
		Start:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Interval: 3 * time.Hour,
		Zones:    DefaultZones,
	}
}

// Validate validates the generator configuration.
func (c *GeneratorConfig) Validate() error {
	if c.Records <= 0 {
		return fmt.Errorf("records must be positive, got %d", c.Records)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("at least one zone is required")
	}
	return nil
}

// Generator produces synthetic wildfire alert readings: normally
// distributed temperature, humidity, and wind, an occasional fire
// event, and periodic forced extremes so a demo rule set always has
// something to classify.
type Generator struct {
	config *GeneratorConfig
	rng    *rand.Rand
	runID  string
}

// NewGenerator creates a generator. A nil config uses the defaults.
func NewGenerator(config *GeneratorConfig) (*Generator, error) {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		runID:  uuid.NewString(),
	}, nil
}

// RunID identifies this generation run.
func (g *Generator) RunID() string {
	return g.runID
}

// Generate produces the configured number of alerts.
func (g *Generator) Generate() []Alert {
	out := make([]Alert, 0, g.config.Records)

	for i := 0; i < g.config.Records; i++ {
		temp := g.normal(30, 8)
		hum := g.normal(40, 15)
		wind := g.normal(30, 15)
		event := g.event()

		// Every 20th reading is a heat-and-drought spike and every
		// 15th a dry-lightning strike, so short demo sets still trip
		// the critical rules.
		if i%20 == 0 {
			temp = 42
			hum = 18
		}
		if i%15 == 0 {
			event = EventDryLightning
		}

		zone := g.config.Zones[g.rng.Intn(len(g.config.Zones))]

		out = append(out, Alert{
			Timestamp: g.config.Start.Add(time.Duration(i) * g.config.Interval),
			Zone:      zone,
			Fields: engine.Record{
				"zone":       zone,
				"temp":       clip(temp, 15, 50),
				"hum":        clip(hum, 10, 90),
				"wind":       clip(wind, 0, 80),
				"event_type": event,
			},
		})
	}

	return out
}

// normal draws from N(mu, sigma).
func (g *Generator) normal(mu, sigma float64) float64 {
	return g.rng.NormFloat64()*sigma + mu
}

// event draws the event type: mostly quiet, with small slices of
// uncontrolled campfires and dry lightning.
func (g *Generator) event() string {
	switch u := g.rng.Float64(); {
	case u < 0.90:
		return EventNone
	case u < 0.95:
		return EventCampfire
	default:
		return EventDryLightning
	}
}

// clip bounds v to [lo, hi] and rounds to one decimal.
func clip(v, lo, hi float64) float64 {
	v = math.Max(lo, math.Min(hi, v))
	return math.Round(v*10) / 10
}
