// File: internal/services/intent/matchers.go
package intent

import "regexp"

// pattern is one weighted signal for a category.
type pattern struct {
	re    *regexp.Regexp
	score float64
}

type matcher struct {
	category Category
	patterns []pattern
}

// score returns the best score of any matching pattern, 0 when none match.
func (m matcher) score(lower string) float64 {
	best := 0.0
	for _, p := range m.patterns {
		if p.score > best && p.re.MatchString(lower) {
			best = p.score
		}
	}
	return best
}

func p(expr string, score float64) pattern {
	return pattern{re: regexp.MustCompile(expr), score: score}
}

// battery is evaluated in order; the order also breaks ties between
// mutation categories.
var battery = []matcher{
	{
		category: CategoryCreate,
		patterns: []pattern{
			p(`\b(?:create|add|make)\b(?:\s+[\w'-]+){0,4}?\s+(?:task|todo|to-do|reminder)s?\b`, 0.95),
			p(`^(?:please\s+)?new\s+(?:task|todo|to-do|reminder)\b`, 0.95),
			p(`^(?:please\s+|can you\s+|could you\s+)?remind me to\b`, 0.95),
			p(`\bremind me to\b`, 0.9),
			p(`^(?:please\s+)?(?:add|create)\s+\S`, 0.8),
			p(`\b(?:i need to|i have to|i must|don't let me forget to)\s+\S`, 0.6),
		},
	},
	{
		category: CategoryList,
		patterns: []pattern{
			p(`\b(?:show|list|display|get|view|see|check|give)\b(?:\s+[\w'-]+){0,4}?\s+(?:tasks?|todos?|to-dos?|list)\b`, 0.9),
			p(`\bwhat(?:'s|\s+is|\s+are)\s+(?:on\s+)?(?:my|the)\s+(?:tasks?|todos?|to-dos?|list|to-do list|todo list|agenda)\b`, 0.95),
			p(`^(?:my\s+)?(?:tasks|todos|to-dos)\s*\??$`, 0.9),
			p(`\bwhat\s+(?:do|should)\s+i\s+(?:have|need)\s+to\s+do\b`, 0.85),
			p(`\b(?:do i have|are there)\s+(?:any\s+)?(?:\w+\s+)?(?:tasks|todos)\b`, 0.9),
			p(`\bhow many\s+(?:\w+\s+)?tasks\b`, 0.9),
			p(`\bwhat\s+(?:\w+\s+)?(?:tasks|todos|to-dos)\b`, 0.9),
		},
	},
	{
		category: CategoryComplete,
		patterns: []pattern{
			p(`\b(?:mark|set|check off|tick off|cross off)\b.*\b(?:done|complete|completed|finished|incomplete|not done|undone|pending|uncompleted)\b`, 0.92),
			p(`^(?:please\s+)?(?:complete|finish|check off|tick off|cross off)\s+\S`, 0.92),
			p(`\bi(?:'ve|\s+have)?\s+(?:just\s+)?(?:finished|completed|done with)\s+\S`, 0.9),
			p(`\b(?:i'm|i\s+am)\s+(?:all\s+)?done\s+with\s+\S`, 0.9),
			p(`^(?:ok\s+|okay\s+)?done\s+with\s+\S`, 0.88),
			p(`\b(?:undo|reopen|uncomplete|un-complete)\b`, 0.9),
			p(`\S\s+is\s+(?:done|finished|complete)\b`, 0.85),
		},
	},
	{
		category: CategoryUpdate,
		patterns: []pattern{
			p(`\b(?:change|update|modify|edit|rename)\b.*\bto\s+\S`, 0.89),
			p(`\b(?:set|change|update|edit)\s+(?:the\s+)?(?:description|notes?|details?)\b`, 0.93),
			p(`^(?:please\s+)?(?:update|edit|rename|modify|change)\s+\S`, 0.7),
		},
	},
	{
		category: CategoryDelete,
		patterns: []pattern{
			p(`\b(?:delete|remove|erase|drop|trash)\s+\S`, 0.91),
			p(`\bget rid of\s+\S`, 0.95),
		},
	},
	{
		category: CategoryCasual,
		patterns: []pattern{
			p(`^(?:hi|hello|hey|heya|hiya|yo|sup|howdy|greetings|good\s+(?:morning|afternoon|evening|day))\b`, 0.85),
			p(`\b(?:thanks|thank\s+you|thx|ty|appreciate\s+it|cheers)\b`, 0.85),
			p(`^(?:ok|okay|k|cool|great|nice|awesome|perfect|got\s+it|sounds\s+good|alright|sure|yes|no|yep|nope|lol|haha)\s*[.!]*$`, 0.85),
			p(`^(?:bye|goodbye|see\s+you|good\s*night|cya)\b`, 0.85),
			p(`\bhow\s+are\s+you\b|\bhow's\s+it\s+going\b`, 0.85),
			p(`\b(?:who|what)\s+are\s+you\b|\bwhat\s+can\s+you\s+do\b|\bcan\s+you\s+help\b|^help\b`, 0.85),
			p(`\bi(?:'m|\s+am)\s+(?:so\s+|really\s+|very\s+|feeling\s+|a\s+bit\s+)*(?:tired|exhausted|stressed|happy|sad|excited|bored|overwhelmed|great|good|fine|frustrated|anxious)\b`, 0.8),
			p(`\b(?:ugh|argh|frustrated|overwhelmed)\b`, 0.75),
		},
	},
}

// rank orders categories for tie-breaking: mutations beat LIST, LIST beats
// CASUAL.
func rank(c Category) int {
	switch {
	case c.IsMutation():
		return 2
	case c == CategoryList:
		return 1
	default:
		return 0
	}
}
