package naoqi

import "context"

// behaviorProxy implements BehaviorManager over ALBehaviorManager.
type behaviorProxy struct {
	p *proxy
}

func (b *behaviorProxy) ListInstalled(ctx context.Context) ([]string, error) {
	var names []string
	if err := b.p.call(ctx, "getInstalledBehaviors", &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (b *behaviorProxy) IsInstalled(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := b.p.call(ctx, "isBehaviorInstalled", &ok, name)
	return ok, err
}

func (b *behaviorProxy) IsRunning(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := b.p.call(ctx, "isBehaviorRunning", &ok, name)
	return ok, err
}

func (b *behaviorProxy) ListRunning(ctx context.Context) ([]string, error) {
	var names []string
	if err := b.p.call(ctx, "getRunningBehaviors", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// RunBehavior starts name without waiting for it to finish.
func (b *behaviorProxy) RunBehavior(ctx context.Context, name string) error {
	return b.p.post(ctx, "runBehavior", name)
}

// StopBehavior blocks until name has stopped.
func (b *behaviorProxy) StopBehavior(ctx context.Context, name string) error {
	return b.p.call(ctx, "stopBehavior", nil, name)
}

func (b *behaviorProxy) StopAll(ctx context.Context) error {
	return b.p.call(ctx, "stopAllBehaviors", nil)
}
