package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/wat/syntax"
)

// MessageKind tells how a Message renders.
type MessageKind int

const (
	// MessageExpectedChar: a specific character is missing.
	MessageExpectedChar MessageKind = iota
	// MessageExpectedLiteral: a specific word is missing.
	MessageExpectedLiteral
	// MessageExpectedDescription: a grammatical element is missing.
	MessageExpectedDescription
	// MessageUnexpectedToken: input was absorbed as an error element.
	MessageUnexpectedToken
	// MessageDescription: free-form text.
	MessageDescription
)

var messageKindNames = [...]string{
	MessageExpectedChar:        "ExpectedChar",
	MessageExpectedLiteral:     "ExpectedLiteral",
	MessageExpectedDescription: "ExpectedDescription",
	MessageUnexpectedToken:     "UnexpectedToken",
	MessageDescription:         "Description",
}

func (k MessageKind) String() string {
	if k >= 0 && int(k) < len(messageKindNames) {
		return messageKindNames[k]
	}
	return "Unknown"
}

// Message is the content of a syntax error. Char is set for
// MessageExpectedChar, Text for the literal, description and free-form
// kinds.
type Message struct {
	Kind MessageKind
	Char rune
	Text string
}

func ExpectedChar(c rune) Message {
	return Message{Kind: MessageExpectedChar, Char: c}
}

func ExpectedLiteral(s string) Message {
	return Message{Kind: MessageExpectedLiteral, Text: s}
}

func ExpectedDescription(s string) Message {
	return Message{Kind: MessageExpectedDescription, Text: s}
}

func Description(s string) Message {
	return Message{Kind: MessageDescription, Text: s}
}

var UnexpectedToken = Message{Kind: MessageUnexpectedToken}

func (m Message) String() string {
	switch m.Kind {
	case MessageExpectedChar:
		return fmt.Sprintf("expected `%c`", m.Char)
	case MessageExpectedLiteral:
		return fmt.Sprintf("expected `%s`", m.Text)
	case MessageExpectedDescription:
		return "expected " + m.Text
	case MessageUnexpectedToken:
		return "unexpected token"
	}
	return m.Text
}

// SyntaxError is a diagnostic attached to a half-open range of the source.
type SyntaxError struct {
	Range   syntax.TextRange
	Message Message
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d..%d: %s", e.Range.Start, e.Range.End, e.Message)
}

// Code identifies the diagnostic for editors, for example
// "syntax/export-name" for a missing export name.
func (e SyntaxError) Code() string {
	if e.Message.Kind == MessageExpectedDescription {
		return "syntax/" + strings.ReplaceAll(e.Message.Text, " ", "-")
	}
	return "syntax"
}
