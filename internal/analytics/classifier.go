package analytics

import (
	"strings"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

type classifyInput struct {
	kind   string
	reason string
}

func (in classifyInput) has(sub string) bool { return strings.Contains(in.kind, sub) }

func (in classifyInput) isFiber() bool { return in.has("bl") || in.has("fibra") }

// classificationRule is one entry of the ordered rule table.
type classificationRule struct {
	name     string
	match    func(classifyInput) bool
	category domain.Category
}

// classificationRules is evaluated top to bottom and the first match wins. The
// containment fallbacks at the bottom would shadow the exact forms if reordered.
var classificationRules = []classificationRule{
	{
		name:     "exact corretiva",
		match:    func(in classifyInput) bool { return in.kind == "corretiva" },
		category: domain.CategoryTechAssistanceTV,
	},
	{
		name:     "exact corretiva bl",
		match:    func(in classifyInput) bool { return in.kind == "corretiva bl" },
		category: domain.CategoryTechAssistanceFiber,
	},
	{
		name: "substituição upgrade sky 4k plus",
		match: func(in classifyInput) bool {
			return in.kind == "substituição" && strings.Contains(in.reason, "upgrade sky 4k plus")
		},
		category: domain.CategoryUnclassified,
	},
	{
		name:     "exact ponto principal",
		match:    func(in classifyInput) bool { return in.kind == "ponto principal" },
		category: domain.CategoryPrincipalPointTV,
	},
	{
		name:     "exact ponto principal bl",
		match:    func(in classifyInput) bool { return in.kind == "ponto principal bl" },
		category: domain.CategoryPrincipalPointFiber,
	},
	{
		name:     "ponto principal fiber variant",
		match:    func(in classifyInput) bool { return in.has("ponto principal") && in.isFiber() },
		category: domain.CategoryPrincipalPointFiber,
	},
	{
		name:     "ponto principal variant",
		match:    func(in classifyInput) bool { return in.has("ponto principal") },
		category: domain.CategoryPrincipalPointTV,
	},
	{
		name:     "corretiva variant",
		match:    func(in classifyInput) bool { return in.has("corretiva") && !in.has("bl") },
		category: domain.CategoryTechAssistanceTV,
	},
	{
		name: "corretiva fiber variant",
		match: func(in classifyInput) bool {
			return (in.has("corretiva") && in.has("bl")) || in.has("fibra")
		},
		category: domain.CategoryTechAssistanceFiber,
	},
	{
		name:     "substituição",
		match:    func(in classifyInput) bool { return in.has("substituição") },
		category: domain.CategoryUnclassified,
	},
}

// Classify maps a raw (sub-type, reason) pair to a standardized category.
func Classify(serviceType, reason string) domain.Category {
	category, _ := classify(serviceType, reason)
	return category
}

func classify(serviceType, reason string) (domain.Category, string) {
	in := classifyInput{kind: lowerTrim(serviceType), reason: lowerTrim(reason)}
	for _, rule := range classificationRules {
		if rule.match(in) {
			return rule.category, rule.name
		}
	}
	return domain.CategoryUnclassified, ""
}
