package scoring

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leadvalidator/platform/pkg/common/models"
	"github.com/nyaruka/phonenumbers"
)

// Deductions applied by the individual heuristics. The score starts at 100
// and only ever decreases.
const (
	startScore = 100
	spamFloor  = 30

	penaltyMissingEmail     = 50
	penaltyInvalidEmail     = 30
	penaltyDisposableDomain = 40
	penaltyTestDomain       = 25
	penaltyInvalidPhone     = 10
	penaltyShortFirstName   = 15
	penaltyShortLastName    = 10
	penaltyPerSpamKeyword   = 15
	penaltyExcessiveCaps    = 20
	penaltyExcessivePunct   = 15
	penaltyBotUserAgent     = 30
)

var emailRegex = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

var punctuationRuns = regexp.MustCompile(`[!?]{2,}`)

type Scorer struct {
	disposable  map[string]struct{}
	keywords    []string
	botPatterns []*regexp.Regexp
	phoneRegion string
}

// NewScorer compiles the rule sets into a scorer. phoneRegion is the ISO
// 3166-1 region used when a submitted phone number has no country prefix.
func NewScorer(cfg RulesConfig, phoneRegion string) (*Scorer, error) {
	disposable := make(map[string]struct{}, len(cfg.DisposableDomains))
	for _, domain := range cfg.DisposableDomains {
		if trimmed := strings.TrimSpace(strings.ToLower(domain)); trimmed != "" {
			disposable[trimmed] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(cfg.SpamKeywords))
	for _, kw := range cfg.SpamKeywords {
		if trimmed := strings.TrimSpace(strings.ToLower(kw)); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.BotPatterns))
	for _, pattern := range cfg.BotPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling bot pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, re)
	}

	if phoneRegion == "" {
		phoneRegion = "US"
	}

	return &Scorer{
		disposable:  disposable,
		keywords:    keywords,
		botPatterns: patterns,
		phoneRegion: phoneRegion,
	}, nil
}

// Score runs the heuristic checks against a submission in a fixed order and
// returns the qualification result. It is pure and total: any input,
// including garbage strings, produces a result.
func (s *Scorer) Score(record models.SubmissionRecord) models.ValidationResult {
	score := startScore
	var reasons []string
	emailValid := false
	var phoneValid *bool
	isSpam := false

	// 1. Email presence, format, and domain reputation
	if record.Email == "" {
		score -= penaltyMissingEmail
		reasons = append(reasons, "Missing email address")
	} else {
		emailValid = emailRegex.MatchString(record.Email)
		if !emailValid {
			score -= penaltyInvalidEmail
			reasons = append(reasons, "Invalid email format")
		} else {
			domain := strings.ToLower(record.Email[strings.LastIndex(record.Email, "@")+1:])

			if _, ok := s.disposable[domain]; ok {
				score -= penaltyDisposableDomain
				reasons = append(reasons, "Disposable email domain")
				isSpam = true
			} else if strings.Contains(domain, "test") || strings.Contains(domain, "example") {
				score -= penaltyTestDomain
				reasons = append(reasons, "Test email domain")
			}
		}
	}

	// 2. Phone number, only when supplied; parse failures are a negative
	// signal, never an error
	if record.Phone != "" {
		valid := s.validPhone(record.Phone)
		phoneValid = &valid
		if !valid {
			score -= penaltyInvalidPhone
			reasons = append(reasons, "Invalid phone number")
		}
	}

	// 3. First name
	if utf8.RuneCountInString(record.FirstName) < 2 {
		score -= penaltyShortFirstName
		reasons = append(reasons, "Missing or invalid first name")
	}

	// 4. Last name
	if utf8.RuneCountInString(record.LastName) < 2 {
		score -= penaltyShortLastName
		reasons = append(reasons, "Missing or invalid last name")
	}

	// 5. Message content
	if record.Message != "" {
		messageLower := strings.ToLower(record.Message)

		keywordCount := 0
		for _, kw := range s.keywords {
			if strings.Contains(messageLower, kw) {
				keywordCount++
			}
		}
		if keywordCount > 0 {
			score -= keywordCount * penaltyPerSpamKeyword
			reasons = append(reasons, fmt.Sprintf("Message contains %d spam keyword(s)", keywordCount))
			if keywordCount >= 2 {
				isSpam = true
			}
		}

		if capsRatio(record.Message) > 0.5 {
			score -= penaltyExcessiveCaps
			reasons = append(reasons, "Excessive capitalization in message")
			isSpam = true
		}

		if punctuationRuns.MatchString(record.Message) {
			score -= penaltyExcessivePunct
			reasons = append(reasons, "Excessive punctuation in message")
		}
	}

	// 6. User agent
	if record.UserAgent != "" {
		for _, re := range s.botPatterns {
			if re.MatchString(record.UserAgent) {
				score -= penaltyBotUserAgent
				reasons = append(reasons, "Bot-like user agent detected")
				isSpam = true
				break
			}
		}
	}

	// 7. Clamp, then 8. forced spam override. Score never increases, so
	// spam flags set inline by earlier heuristics cannot be invalidated
	// by the ordering here.
	if score < 0 {
		score = 0
	}
	if score < spamFloor {
		isSpam = true
	}

	return models.ValidationResult{
		Score:      score,
		EmailValid: emailValid,
		PhoneValid: phoneValid,
		IsSpam:     isSpam,
		Reasons:    reasons,
	}
}

func (s *Scorer) validPhone(raw string) bool {
	num, err := phonenumbers.Parse(raw, s.phoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

func capsRatio(message string) float64 {
	total := 0
	upper := 0
	for _, r := range message {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}
