// File: internal/services/formatter/casual.go
package formatter

import (
	"regexp"
	"strings"
)

type casualReply struct {
	re    *regexp.Regexp
	reply string
}

// Checked in order; the first match wins.
var casualReplies = []casualReply{
	{
		re:    regexp.MustCompile(`\b(?:thanks|thank\s+you|thx|ty|appreciate\s+it|cheers)\b`),
		reply: "You're welcome! Let me know if there's anything else I can do.",
	},
	{
		re:    regexp.MustCompile(`^(?:bye|goodbye|see\s+you|good\s*night|cya)\b`),
		reply: "Goodbye! Your tasks will be here when you get back.",
	},
	{
		re:    regexp.MustCompile(`\b(?:tired|exhausted|stressed|overwhelmed|frustrated|anxious|sad|ugh|argh)\b`),
		reply: "That sounds tough. Breaking things into small steps can help. Want me to show what's on your list?",
	},
	{
		re:    regexp.MustCompile(`\b(?:who|what)\s+are\s+you\b|\bwhat\s+can\s+you\s+do\b|\bcan\s+you\s+help\b|^help\b`),
		reply: `I'm your task assistant. I can add, list, complete, update and delete tasks. Try "show my pending tasks".`,
	},
	{
		re:    regexp.MustCompile(`\bhow\s+are\s+you\b|\bhow's\s+it\s+going\b`),
		reply: "I'm doing well, thanks for asking! How can I help with your tasks?",
	},
	{
		re:    regexp.MustCompile(`^(?:hi|hello|hey|heya|hiya|yo|sup|howdy|greetings|good\s+(?:morning|afternoon|evening|day))\b`),
		reply: `Hi! I can help you manage your tasks. Try "add a task to buy milk" or "show my tasks".`,
	},
	{
		re:    regexp.MustCompile(`\b(?:happy|excited|great|good|awesome|nice|perfect|cool)\b`),
		reply: "Glad to hear it! Want to get something done while you're on a roll?",
	},
}

const casualDefault = "Got it. Is there anything you'd like to do with your tasks?"

// Casual picks a friendly reply for small talk.
func Casual(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, c := range casualReplies {
		if c.re.MatchString(lower) {
			return c.reply
		}
	}
	return casualDefault
}
