// Package export renders saved plans as PDF documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"nutritrack/internal/models"
)

const (
	lineHeight = 6.0
	indentStep = 5.0
)

// PDFRenderer lays out the plan JSON as headings and bullet lists.
type PDFRenderer struct {
	now func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: time.Now}
}

func (r *PDFRenderer) RenderPlan(user *models.User, plan *models.UserPlan) ([]byte, error) {
	var data interface{}
	if len(plan.Data) > 0 {
		if err := json.Unmarshal(plan.Data, &data); err != nil {
			return nil, fmt.Errorf("plan %d has invalid data: %w", plan.ID, err)
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(plan.Title), false)
	pdf.SetCreator("nutritrack", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(plan.Title), "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	kind := "Diet plan"
	if plan.Type == models.PlanTypeWorkout {
		kind = "Workout plan"
	}
	subtitle := fmt.Sprintf("%s, generated %s", kind, r.now().Format("2006-01-02"))
	if user != nil && user.Name != "" {
		subtitle = fmt.Sprintf("%s for %s", subtitle, user.Name)
	}
	pdf.MultiCell(0, lineHeight, tr(subtitle), "", "L", false)
	if user != nil && user.DailyCalories > 0 {
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("Daily targets: %d kcal, %d g protein, %d g carbs, %d g fat",
			user.DailyCalories, user.DailyProtein, user.DailyCarbs, user.DailyFat), "", "L", false)
	}
	pdf.Ln(4)

	w := &writer{pdf: pdf, tr: tr}
	w.value(data, 0)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render plan %d: %w", plan.ID, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write plan %d: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) value(v interface{}, depth int) {
	switch t := v.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			child := t[k]
			if isScalar(child) {
				w.line(depth, fmt.Sprintf("%s: %s", label(k), scalar(child)), "")
				continue
			}
			w.heading(depth, label(k))
			w.value(child, depth+1)
		}
	case []interface{}:
		for i, item := range t {
			if isScalar(item) {
				w.line(depth, "- "+scalar(item), "")
				continue
			}
			if name := itemName(item); name != "" {
				w.heading(depth, name)
			} else {
				w.heading(depth, fmt.Sprintf("%d.", i+1))
			}
			w.value(withoutName(item), depth+1)
		}
	case nil:
	default:
		w.line(depth, scalar(t), "")
	}
}

func (w *writer) heading(depth int, text string) {
	size := 13.0 - float64(depth)
	if size < 10 {
		size = 10
	}
	w.pdf.Ln(1)
	w.line(depth, text, "B", size)
}

func (w *writer) line(depth int, text, style string, size ...float64) {
	fontSize := 10.0
	if len(size) > 0 {
		fontSize = size[0]
	}
	w.pdf.SetFont("Helvetica", style, fontSize)
	left, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetX(left + float64(depth)*indentStep)
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "L", false)
}

// itemName picks a title for objects in a list, e.g. a day or a meal.
func itemName(v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, k := range []string{"day", "name", "title", "meal"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func withoutName(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	name := itemName(v)
	out := make(map[string]interface{}, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok && s == name {
			continue
		}
		out[k] = val
	}
	return out
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	}
	return true
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.1f", t)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(t)
	}
}

func label(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
