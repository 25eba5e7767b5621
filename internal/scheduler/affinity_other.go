//go:build !linux

package scheduler

func pinToCore(core int) error {
	return ErrAffinityUnsupported
}
