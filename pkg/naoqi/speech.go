package naoqi

import "context"

// speechProxy implements Speech over ALTextToSpeech.
type speechProxy struct {
	p *proxy
}

func (s *speechProxy) Say(ctx context.Context, text string) error {
	return s.p.call(ctx, "say", nil, text)
}
