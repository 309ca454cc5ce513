package service

import (
	"context"
	"regexp"
	"strings"

	"money-mate/internal/models"

	"go.uber.org/zap"
)

// Categorizer assigns a spending category to a transaction description.
type Categorizer interface {
	Categorize(ctx context.Context, description string) string
}

// LLMCategorizer is the optional fallback for descriptions no keyword covers.
type LLMCategorizer interface {
	CategorizeTransaction(ctx context.Context, description string) (string, error)
}

type categoryRule struct {
	category string
	pattern  *regexp.Regexp
}

func keywordRule(category string, keywords ...string) categoryRule {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return categoryRule{
		category: category,
		pattern:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Checked in order. Banking deliberately leaves out verbs such as "debited"
// that appear in almost every bank SMS.
var categoryRules = []categoryRule{
	keywordRule(models.SpendingFoodDining,
		"zomato", "swiggy", "dominos", "pizza", "burger", "kfc", "mcdonalds", "restaurant", "food",
		"cafe", "hotel", "dining", "eatery", "bakery", "subway", "starbucks", "dunkin", "baskin",
		"haldirams", "barbeque"),
	keywordRule(models.SpendingFuel,
		"petrol", "fuel", "diesel", "pump", "hp", "iocl", "bpcl", "shell", "essar", "bharat petroleum"),
	keywordRule(models.SpendingShopping,
		"amazon", "flipkart", "myntra", "shopping", "mall", "store", "nykaa", "ajio", "meesho",
		"snapdeal", "paytm mall", "bigbasket"),
	keywordRule(models.SpendingTransport,
		"uber", "ola", "taxi", "metro", "bus", "train", "irctc", "makemytrip", "ixigo", "travel",
		"ticket", "rapido", "cab", "flight"),
	keywordRule(models.SpendingUtilities,
		"recharge", "mobile", "electricity", "gas", "water", "bill", "airtel", "jio", "vodafone",
		"broadband", "wifi", "internet"),
	keywordRule(models.SpendingEducation,
		"coursera", "udemy", "education", "school", "college", "byjus", "unacademy", "course",
		"tuition", "fees", "books"),
	keywordRule(models.SpendingEntertainment,
		"netflix", "spotify", "movie", "cinema", "entertainment", "music", "hotstar", "prime",
		"youtube", "gaming", "pvr", "inox"),
	keywordRule(models.SpendingHealthcare,
		"hospital", "doctor", "medical", "pharmacy", "medicine", "health", "apollo", "medplus",
		"clinic", "diagnostic"),
	keywordRule(models.SpendingBanking,
		"atm", "neft", "imps", "rtgs", "minimum balance", "charges", "fee", "interest", "emi"),
	keywordRule(models.SpendingPersonal, "family", "personal"),
}

type CategoryService struct {
	llm    LLMCategorizer
	logger *zap.Logger
}

// NewCategoryService returns a keyword categorizer; llm may be nil.
func NewCategoryService(llm LLMCategorizer, logger *zap.Logger) *CategoryService {
	return &CategoryService{llm: llm, logger: logger}
}

func (s *CategoryService) Categorize(ctx context.Context, description string) string {
	if category, ok := matchCategory(description); ok {
		return category
	}
	if s.llm == nil || strings.TrimSpace(description) == "" {
		return models.SpendingOthers
	}

	category, err := s.llm.CategorizeTransaction(ctx, description)
	if err != nil {
		s.logger.Warn("LLM categorization failed, using default", zap.Error(err))
		return models.SpendingOthers
	}
	return normalizeCategory(category)
}

func matchCategory(description string) (string, bool) {
	for _, r := range categoryRules {
		if r.pattern.MatchString(description) {
			return r.category, true
		}
	}
	return "", false
}

// normalizeCategory maps free-form model output onto a known category.
func normalizeCategory(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), `"'.`)
	for _, c := range models.SpendingCategories {
		if strings.EqualFold(raw, c) {
			return c
		}
	}
	lower := strings.ToLower(raw)
	for _, c := range models.SpendingCategories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return models.SpendingOthers
}
