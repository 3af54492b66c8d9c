package command

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
)

// Client display limits
const (
	MinFontSize   = 1
	MaxFontSize   = 1000
	MinSpeechRate = 0.1
	MaxSpeechRate = 10.0
)

func onOff(arg string) (bool, bool) {
	switch strings.ToLower(arg) {
	case "on":
		return true, true
	case "off":
		return false, true
	}
	return false, false
}

func (r *Router) highContrast(_ context.Context, req *Request) ([]model.Message, error) {
	on, ok := onOff(req.Args[0])
	if !ok {
		return nil, userErrorf("Usage: highcontrast <on|off>")
	}
	theme, state := "default", "off"
	if on {
		theme, state = "high-contrast", "on"
	}
	return []model.Message{
		model.NewMessage(model.MessageTheme, "High contrast mode turned "+state).
			WithData(model.ThemeData{Theme: theme}),
	}, nil
}

func (r *Router) fontSize(_ context.Context, req *Request) ([]model.Message, error) {
	size, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return nil, userErrorf("Usage: fontsize <%d-%d>", MinFontSize, MaxFontSize)
	}
	if size < MinFontSize || size > MaxFontSize {
		return nil, userErrorf("Font size must be between %d and %d", MinFontSize, MaxFontSize)
	}
	return []model.Message{
		model.NewMessage(model.MessageFontSize, fmt.Sprintf("Font size set to %dpx", size)).
			WithData(model.FontSizeData{FontSize: size}),
	}, nil
}

func (r *Router) speech(_ context.Context, req *Request) ([]model.Message, error) {
	on, ok := onOff(req.Args[0])
	if !ok {
		return nil, userErrorf("Usage: speech <on|off>")
	}
	action, state := "disable", "off"
	if on {
		action, state = "enable", "on"
	}
	return []model.Message{
		model.NewMessage(model.MessageSpeech, "Text-to-speech turned "+state).
			WithData(model.SpeechData{Action: action, Enabled: on}),
	}, nil
}

func (r *Router) speechRate(_ context.Context, req *Request) ([]model.Message, error) {
	rate, err := strconv.ParseFloat(req.Args[0], 64)
	if err != nil {
		return nil, userErrorf("Usage: speech-rate <%g-%g>", MinSpeechRate, MaxSpeechRate)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < MinSpeechRate || rate > MaxSpeechRate {
		return nil, userErrorf("Speech rate must be between %g and %g", MinSpeechRate, MaxSpeechRate)
	}
	return []model.Message{
		model.NewMessage(model.MessageSpeech, fmt.Sprintf("Speech rate set to %g", rate)).
			WithData(model.SpeechData{Action: "rate", Rate: rate}),
	}, nil
}

func (r *Router) speechRepeat(context.Context, *Request) ([]model.Message, error) {
	return []model.Message{
		model.NewMessage(model.MessageSpeech, "Repeating all visible text...").
			WithData(model.SpeechData{Action: "repeat"}),
	}, nil
}

func (r *Router) speechStop(context.Context, *Request) ([]model.Message, error) {
	return []model.Message{
		model.NewMessage(model.MessageSpeech, "Stopping text-to-speech...").
			WithData(model.SpeechData{Action: "stop"}),
	}, nil
}
