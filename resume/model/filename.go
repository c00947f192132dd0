package model

import (
	"strings"
	"unicode"
)

// Export formats.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ExportFileName names a download after the person's first and last name,
// falling back to resume.pdf / resume-<template>.docx.
func ExportFileName(info PersonalInformation, template Template, format string) string {
	stem := nameStem(info.Name)
	suffix := ""
	if format == FormatDOCX {
		suffix = "-" + template.String()
	}
	if stem == "" {
		return "resume" + suffix + "." + format
	}
	return stem + "-resume" + suffix + "." + format
}

func nameStem(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(parts) == 0 {
		return ""
	}
	keep := []string{parts[0]}
	if len(parts) > 1 {
		keep = append(keep, parts[len(parts)-1])
	}
	for i := range keep {
		keep[i] = strings.ToLower(keep[i])
	}
	return strings.Join(keep, "-")
}
