package record

import (
	"fmt"
	"strings"
)

const notMentioned = "Not Mentioned"

// Document is one SBS entry rendered for retrieval: the descriptive text
// plus the code and short description as retrievable identity.
type Document struct {
	Code             string
	ShortDescription string
	Content          string
}

// ToDocument renders an SBS entry into the retrieval document format.
// Blank fields are rendered as "Not Mentioned" so the embedding text keeps a
// stable shape across sparse rows.
func ToDocument(e StandardCodeEntry) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "**Service Short Description:** %s\n", orNotMentioned(e.ShortDescription))
	fmt.Fprintf(&b, "Service Long Description: %s\n", orNotMentioned(e.LongDescription))
	fmt.Fprintf(&b, "Definition: %s\n", orNotMentioned(e.Definition))
	fmt.Fprintf(&b, "Service Category: %s\n", orNotMentioned(e.BlockName))
	fmt.Fprintf(&b, "Service Classification: %s\n", orNotMentioned(e.ChapterName))
	fmt.Fprintf(&b, "Service Code: %s", orNotMentioned(e.CodeHyphenated))

	return Document{
		Code:             e.CodeHyphenated,
		ShortDescription: e.ShortDescription,
		Content:          strings.TrimSpace(b.String()),
	}
}

// ToDocuments renders the full reference set.
func ToDocuments(entries []StandardCodeEntry) []Document {
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = ToDocument(e)
	}
	return docs
}

func orNotMentioned(s string) string {
	if strings.TrimSpace(s) == "" {
		return notMentioned
	}
	return s
}
