package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var emailPipeline = Pipeline{
	TrimAndNormalize,
	strings.ToLower,
	func(s string) string { return strings.ReplaceAll(s, " ", "") },
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}
