// Package report renders training summaries as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"surveyml/app"
	"surveyml/domain/model"
)

// Markdown renders the run summary, the model comparison, the importance rankings, the
// comment insights and any warnings. A nil insights skips that section.
func Markdown(sum *app.Summary, importance []app.ModelImportance, insights *app.CommentInsights) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Low satisfaction analysis\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", sum.RunID)
	fmt.Fprintf(&b, "- Source: %s\n", escape(sum.Source))
	fmt.Fprintf(&b, "- Tokenizer: %s\n", sum.Tokenizer)
	fmt.Fprintf(&b, "- Records: %d, low satisfaction: %d (score <= %s)\n",
		sum.Records, sum.Positives, formatScore(sum.Threshold))
	fmt.Fprintf(&b, "- Features: %d numeric, %d text\n\n", sum.NumericColumns, sum.TextColumns)

	writeComparison(&b, sum)
	for _, mi := range importance {
		writeImportance(&b, mi)
	}
	if insights != nil {
		writeInsights(&b, insights)
	}

	if len(sum.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range sum.Warnings {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", w.Code, w.Stage, escape(w.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeComparison(b *strings.Builder, sum *app.Summary) {
	b.WriteString("## Model comparison\n\n")
	b.WriteString("| Model | Train accuracy | CV accuracy | Test accuracy |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, r := range sum.Reports {
		cv := "n/a"
		if r.CVFolds > 0 {
			cv = fmt.Sprintf("%.3f ± %.3f (%d folds)", r.CVMean, r.CVStd, r.CVFolds)
		}
		name := r.Model.DisplayName()
		if r.Model == sum.BestModel {
			name = "**" + name + "**"
		}
		fmt.Fprintf(b, "| %s | %.3f | %s | %.3f |\n", name, r.TrainAccuracy, cv, r.TestAccuracy)
	}
	b.WriteString("\n")

	if len(sum.Failures) > 0 {
		b.WriteString("Failed models:\n\n")
		for _, f := range sum.Failures {
			fmt.Fprintf(b, "- %s: %s\n", f.Model.DisplayName(), escape(f.Err))
		}
		b.WriteString("\n")
	}
}

func writeImportance(b *strings.Builder, mi app.ModelImportance) {
	fmt.Fprintf(b, "## Feature importance: %s\n\n", mi.Model.DisplayName())
	if len(mi.Features) == 0 {
		b.WriteString("No features carried importance.\n\n")
		return
	}
	b.WriteString("| Rank | Feature | Kind | Importance | Impact |\n")
	b.WriteString("|---:|---|---|---:|---|\n")
	for _, f := range mi.Features {
		fmt.Fprintf(b, "| %d | %s | %s | %.4f | %s |\n", f.Rank, escape(f.Term), kindLabel(f.Kind), f.Importance, f.Impact)
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, in *app.CommentInsights) {
	low, rest := in.Low, in.Rest
	b.WriteString("## Comment insights\n\n")
	b.WriteString("| | Low satisfaction | Others |\n")
	b.WriteString("|---|---:|---:|\n")
	fmt.Fprintf(b, "| Comments | %d | %d |\n", low.Records, rest.Records)
	fmt.Fprintf(b, "| Empty comments | %d | %d |\n", low.Length.Empty, rest.Length.Empty)
	fmt.Fprintf(b, "| Mean length (chars) | %.1f | %.1f |\n", low.Length.Mean, rest.Length.Mean)
	fmt.Fprintf(b, "| Median length (chars) | %.1f | %.1f |\n", low.Length.Median, rest.Length.Median)
	fmt.Fprintf(b, "| Length range | %d-%d | %d-%d |\n", low.Length.Min, low.Length.Max, rest.Length.Min, rest.Length.Max)
	fmt.Fprintf(b, "| Mean sentiment | %+.2f | %+.2f |\n", low.Sentiment.Mean, rest.Sentiment.Mean)
	fmt.Fprintf(b, "| Positive / neutral / negative | %d / %d / %d | %d / %d / %d |\n",
		low.Sentiment.Positive, low.Sentiment.Neutral, low.Sentiment.Negative,
		rest.Sentiment.Positive, rest.Sentiment.Neutral, rest.Sentiment.Negative)
	b.WriteString("\n")

	fmt.Fprintf(b, "### Frequent keywords (%s)\n\n", in.Tokenizer)
	rows := len(low.Keywords)
	if len(rest.Keywords) > rows {
		rows = len(rest.Keywords)
	}
	if rows == 0 {
		b.WriteString("No keywords found.\n\n")
		return
	}
	b.WriteString("| Rank | Low satisfaction | Others |\n")
	b.WriteString("|---:|---|---|\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(b, "| %d | %s | %s |\n", i+1, keywordCell(low.Keywords, i), keywordCell(rest.Keywords, i))
	}
	b.WriteString("\n")
}

func keywordCell(keywords []app.KeywordCount, i int) string {
	if i >= len(keywords) {
		return ""
	}
	return fmt.Sprintf("%s (%d)", escape(keywords[i].Term), keywords[i].Count)
}

func kindLabel(k model.FeatureKind) string {
	if k == model.FeatureText {
		return "word"
	}
	return "score"
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

var escaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}

// HTML renders markdown to an HTML fragment.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

// Page wraps the rendered summary in a standalone HTML document.
func Page(title string, md string) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"ja\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", escapeHTML(title))
	b.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:2rem auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(HTML(md))
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
