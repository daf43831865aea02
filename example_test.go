package tmpl2pdf_test

import (
	"errors"
	"fmt"
	"strings"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
)

// Example renders the HTML of a résumé without printing it.
// Generate runs the same steps and prints the result (requires Chrome).
func Example() {
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	doc, err := gen.Markup("lebenslauf_0001", []byte(`{
		"name": "Ada Lovelace",
		"email": "ada@example.com",
		"skills": ["Mathematics"]
	}`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(doc, "Ada Lovelace") {
		fmt.Println("HTML generated successfully")
	}
	// Output: HTML generated successfully
}

// Example_templates lists the registered templates.
func Example_templates() {
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	for _, name := range gen.Templates() {
		fmt.Println(name)
	}
	// Output:
	// lebenslauf_0001
	// lebenslauf_0002
	// lebenslauf_0003
}

// Example_validation shows how every payload issue is reported at once.
func Example_validation() {
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	_, err = gen.Markup("lebenslauf_0001", []byte(`{"name": ""}`))

	var verr *tmpl2pdf.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			fmt.Println(issue.Path, issue.Code)
		}
	}
	// Output:
	// name too_small
	// email required
}
