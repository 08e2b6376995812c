package mcpserver

import (
	"strconv"
	"strings"

	"github.com/mentorlink/forum/internal/forum"
	"github.com/mentorlink/forum/internal/models"
)

// GuideURI identifies the posting guide resource.
const GuideURI = "forum://posting-guide"

// PostingGuide describes what a well-formed forum question looks like so LLM
// clients can help users draft one before it is posted through the REST API.
func PostingGuide() string {
	var b strings.Builder
	b.WriteString(`# Forum Posting Guide

A question has a title, a content body, a category and optional tags.

## Rules

1. **Title** is required, at most ` + strconv.Itoa(forum.MaxTitleLength) + ` characters.
2. **Content** is required. Plain text or Markdown.
3. **Category** is required and stored lowercase. Well-known categories:
`)
	for _, c := range models.Categories {
		b.WriteString("   - `" + c + "`\n")
	}
	b.WriteString(`4. **Tags** are an optional list of short strings, kept in the order given.
5. Only the author may edit or delete a question. Anyone signed in may answer
   or upvote; answers cannot be edited afterwards.

## Example

` + "```" + `json
{
  "title": "How do I prepare for a system design interview?",
  "content": "I have two weeks. Which topics should I prioritise?",
  "category": "engineering",
  "tags": ["interviews", "system-design"]
}
` + "```" + `
`)
	return b.String()
}
