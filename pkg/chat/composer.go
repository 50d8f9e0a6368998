// Package chat composes user-facing answers from knowledge base matches,
// falling back to canned replies when the knowledge base has nothing
// relevant. Composition is pure: persistence of the exchange belongs to the
// query log, invoked by the caller.
package chat

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

var openingPhrases = []string{
	"Here's what I found:",
	"Good question! This should help:",
	"I have something on that:",
}

var greetingReplies = []string{
	"Hello! Ask me anything about Python — functions, lists, dictionaries, error handling and more.",
	"Hi there! I'm here to help you learn Python. What would you like to know?",
	"Hey! Ready to dive into some Python? Ask away.",
}

var thanksReplies = []string{
	"You're welcome! Happy coding.",
	"Glad I could help. Come back with more questions any time.",
}

var jokeReplies = []string{
	"Why do Python programmers prefer snake_case? Because they can't C.",
	"I would tell you a UDP joke, but you might not get it.",
}

var fallbackReplies = []string{
	"I'm not sure about that one. Try asking me about Python lists, functions, dictionaries or error handling.",
	"Could you be more specific? I know about Python topics like functions, lists, dictionaries and exceptions.",
	"That's outside what I've learned so far. I can explain lists, functions, classes, dictionaries and error handling.",
}

const pythonDefinition = "Python is a high-level, interpreted programming " +
	"language known for its readable syntax and versatility. It's widely used " +
	"for web development, data analysis, automation, machine learning and " +
	"scripting. Python emphasizes code readability with significant " +
	"indentation, and ships with a large standard library — often described " +
	"as having \"batteries included\"."

// topicReplies answer common beginner topics directly when the knowledge
// base has no match. Texts mirror the curated response database.
var topicReplies = map[string]string{
	"list": "Python lists are ordered collections that can hold different data " +
		"types. Create a list with square brackets: `my_list = [1, 2, 3, 'hello']`. " +
		"You can access elements by index: `my_list[0]` returns the first element. " +
		"Lists are mutable, meaning you can modify them after creation.",
	"function": "Functions in Python are defined using the `def` keyword:\n\n" +
		"```python\ndef greet(name):\n    return f'Hello, {name}!'\n```\n\n" +
		"Functions can take parameters, define defaults and return values, making " +
		"code reusable and easier to test.",
	"exception": "Use try-except blocks to handle errors gracefully:\n\n" +
		"```python\ntry:\n    result = 10 / 0\nexcept ZeroDivisionError:\n" +
		"    print('Cannot divide by zero!')\nfinally:\n    print('This always executes')\n```",
	"dictionary": "Dictionaries store key-value pairs. Create them with curly " +
		"braces:\n\n```python\nmy_dict = {'name': 'John', 'age': 30}\n" +
		"print(my_dict['name'])  # Access by key\nmy_dict['city'] = 'New York'  # Add a pair\n```",
}

// topicOrder keeps topic detection deterministic when a question mentions
// several topics.
var topicOrder = []string{"list", "function", "exception", "dictionary"}

var greetingWords = []string{"hi", "hello", "hey"}

// Composer builds answer strings. The pick function selects from canned
// reply sets and is injectable so tests can make selection deterministic.
type Composer struct {
	pick func(n int) int
}

func NewComposer() *Composer {
	return &Composer{pick: rand.Intn}
}

// NewComposerWithSelector returns a Composer whose canned-reply selection is
// driven by the given function.
func NewComposerWithSelector(pick func(n int) int) *Composer {
	return &Composer{pick: pick}
}

// Compose formats an answer from the ranked match list, or falls back to a
// canned reply when the list is empty. It never fails; missing data always
// degrades to a fallback string.
func (c *Composer) Compose(question string, matches []models.ContentItem) string {
	if len(matches) > 0 {
		return c.composeFromMatch(matches[0])
	}
	return c.cannedReply(question)
}

func (c *Composer) composeFromMatch(item models.ContentItem) string {
	var sb strings.Builder
	sb.WriteString(openingPhrases[c.pick(len(openingPhrases))])
	sb.WriteString("\n\n**")
	sb.WriteString(item.Title)
	sb.WriteString("**\n\n")
	sb.WriteString(item.Body)
	if item.SourceURL != "" {
		fmt.Fprintf(&sb, "\n\nSource: %s", item.SourceURL)
	}
	return sb.String()
}

func (c *Composer) cannedReply(question string) string {
	q := strings.ToLower(question)

	for _, greeting := range greetingWords {
		for _, token := range strings.Fields(q) {
			if strings.Trim(token, ".,!?") == greeting {
				return greetingReplies[c.pick(len(greetingReplies))]
			}
		}
	}

	if strings.Contains(q, "what is python") || strings.Contains(q, "what's python") {
		return pythonDefinition
	}

	for _, topic := range topicOrder {
		if strings.Contains(q, topic) || (topic == "dictionary" && strings.Contains(q, "dict")) {
			return topicReplies[topic]
		}
	}

	if strings.Contains(q, "thank you") || strings.Contains(q, "thanks") {
		return thanksReplies[c.pick(len(thanksReplies))]
	}
	if strings.Contains(q, "joke") {
		return jokeReplies[c.pick(len(jokeReplies))]
	}

	return fallbackReplies[c.pick(len(fallbackReplies))]
}
