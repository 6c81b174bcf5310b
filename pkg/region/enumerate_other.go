//go:build !linux && !windows

package region

func newOSEnumerator() (Enumerator, error) {
	return nil, ErrUnsupported
}

func newOSReader() (Reader, error) {
	return nil, ErrUnsupported
}
