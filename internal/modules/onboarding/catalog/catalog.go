package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const catalogOverrideEnv = "ONBOARDING_CATALOG_YAML"

//go:embed catalog.yaml
var embeddedCatalog []byte

type Catalog struct {
	Version   int       `yaml:"version"`
	Preamble  string    `yaml:"preamble"`
	Templates Templates `yaml:"templates"`
	Fallback  Fallback  `yaml:"fallback"`
	Tips      Tips      `yaml:"tips"`
}

type Templates struct {
	Summary           string `yaml:"summary"`
	SummaryAttachment string `yaml:"summary_attachment"`
	Quiz              string `yaml:"quiz"`
	StudyPlan         string `yaml:"study_plan"`
}

type FallbackQuestion struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Correct  int      `yaml:"correct"`
}

type ReviewSession struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Minutes     int    `yaml:"minutes"`
}

type Fallback struct {
	Summary       string             `yaml:"summary"`
	PlanTitle     string             `yaml:"plan_title"`
	PlanOverview  string             `yaml:"plan_overview"`
	Quiz          []FallbackQuestion `yaml:"quiz"`
	Topics        []string           `yaml:"topics"`
	ReviewSession ReviewSession      `yaml:"review_session"`
	BreakMinutes  int                `yaml:"break_minutes"`
}

type Tips struct {
	Generic []string            `yaml:"generic"`
	Styles  map[string][]string `yaml:"styles"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalogue. The embedded file is validated by
// tests, so a parse failure here is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded onboarding catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads ONBOARDING_CATALOG_YAML when set and falls back to the embedded
// catalogue if the override is missing or invalid.
func Load(log *logger.Logger) *Catalog {
	path := strings.TrimSpace(os.Getenv(catalogOverrideEnv))
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err == nil {
		var c *Catalog
		if c, err = Parse(data); err == nil {
			log.Info("onboarding catalog override loaded", "path", path, "version", c.Version)
			return c
		}
	}
	log.Warn("onboarding catalog override rejected; using embedded", "path", path, "error", err)
	return Default()
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if strings.TrimSpace(c.Preamble) == "" {
		errs = append(errs, errors.New("preamble is empty"))
	}
	for name, tmpl := range map[string]string{
		"summary":            c.Templates.Summary,
		"summary_attachment": c.Templates.SummaryAttachment,
		"quiz":               c.Templates.Quiz,
		"study_plan":         c.Templates.StudyPlan,
	} {
		if strings.TrimSpace(tmpl) == "" {
			errs = append(errs, fmt.Errorf("template %s is empty", name))
		}
	}
	if strings.TrimSpace(c.Fallback.Summary) == "" {
		errs = append(errs, errors.New("fallback summary is empty"))
	}
	if n := len(c.Fallback.Quiz); n < 1 || n > 2 {
		errs = append(errs, fmt.Errorf("fallback quiz needs 1-2 questions, has %d", n))
	}
	for i, q := range c.Fallback.Quiz {
		if len(q.Options) != onboarding.QuizOptionCount || q.Correct < 0 || q.Correct >= onboarding.QuizOptionCount {
			errs = append(errs, fmt.Errorf("fallback quiz question %d is malformed", i))
		}
	}
	if len(c.Fallback.Topics) < 3 {
		errs = append(errs, errors.New("fallback topics need at least 3 entries"))
	}
	if c.Fallback.ReviewSession.Minutes <= 0 || c.Fallback.BreakMinutes <= 0 {
		errs = append(errs, errors.New("fallback session minutes must be positive"))
	}
	if len(c.Tips.Generic) != 4 {
		errs = append(errs, fmt.Errorf("generic tips need exactly 4 entries, has %d", len(c.Tips.Generic)))
	}
	for _, style := range []onboarding.LearningStyle{onboarding.StyleVisual, onboarding.StyleAuditory, onboarding.StyleReading, onboarding.StyleKinesthetic} {
		if len(c.Tips.Styles[string(style)]) == 0 {
			errs = append(errs, fmt.Errorf("no tips for learning style %s", style))
		}
	}
	return errors.Join(errs...)
}

// Render substitutes {{key}} placeholders.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}

// FallbackQuiz returns a fresh copy of the static quiz.
func (c *Catalog) FallbackQuiz() []onboarding.QuizQuestion {
	out := make([]onboarding.QuizQuestion, 0, len(c.Fallback.Quiz))
	for _, q := range c.Fallback.Quiz {
		out = append(out, onboarding.QuizQuestion{
			QuestionText:       q.Question,
			Options:            append([]string(nil), q.Options...),
			CorrectOptionIndex: q.Correct,
		})
	}
	return out
}

// StyleTips returns at most three tips for the given style.
func (c *Catalog) StyleTips(style onboarding.LearningStyle) []string {
	tips := c.Tips.Styles[string(onboarding.ParseLearningStyle(string(style)))]
	if len(tips) > 3 {
		tips = tips[:3]
	}
	return append([]string(nil), tips...)
}
