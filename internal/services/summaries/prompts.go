package summaries

import (
	"fmt"
	"strings"

	"github.com/killallgit/digest-api/internal/models"
)

func summarySystemPrompt() string {
	categories := make([]string, 0)
	for _, c := range models.AllCategories() {
		categories = append(categories, string(c))
	}

	return fmt.Sprintf(`Du bist ein Assistent, der YouTube-Video-Transkripte zusammenfasst.
Antworte ausschließlich mit einem einzelnen JSON-Objekt in diesem Format:

{
  "category": "eine der erlaubten Kategorien",
  "core_message": "die Kernaussage des Videos in ein bis zwei Sätzen",
  "detailed_summary": "eine ausführliche Zusammenfassung in mehreren Absätzen",
  "key_takeaways": ["wichtigste Erkenntnis 1", "wichtigste Erkenntnis 2"],
  "timestamps": [{"offset_seconds": 90, "description": "was an dieser Stelle passiert"}],
  "action_items": ["konkreter umsetzbarer Schritt"]
}

Erlaubte Kategorien (exakt eine wählen, exakt so geschrieben): %s

Regeln:
- Alle Texte auf Deutsch, unabhängig von der Sprache des Transkripts.
- "timestamps" nur angeben, wenn das Transkript erkennbare Abschnitte hat, sonst leere Liste.
- "action_items" leer lassen, wenn das Video keine umsetzbaren Schritte enthält.
- Keine weiteren Felder, kein Text außerhalb des JSON-Objekts.`,
		strings.Join(categories, ", "))
}

func summaryUserPrompt(title, transcript string, part, totalParts int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Videotitel: %s\n\n", title)
	if totalParts > 1 {
		fmt.Fprintf(&b, "Dies ist Teil %d von %d des Transkripts.\n\n", part, totalParts)
	}
	b.WriteString("Transkript:\n")
	b.WriteString(transcript)
	return b.String()
}

func coreMessageSystemPrompt() string {
	return `Du bist ein Assistent, der Teilzusammenfassungen eines langen Videos zu einer Kernaussage verdichtet.
Antworte ausschließlich mit einem JSON-Objekt im Format {"core_message": "..."}.
Die Kernaussage umfasst ein bis zwei Sätze auf Deutsch und deckt das gesamte Video ab.`
}

func coreMessageUserPrompt(title string, coreMessages []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Videotitel: %s\n\nKernaussagen der Teile:\n", title)
	for i, msg := range coreMessages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, msg)
	}
	return b.String()
}
