//go:build !windows

package winlist

type systemLister struct{}

// Windows yields nothing; click-to-select is a Windows feature and a tiny
// click elsewhere cancels.
func (systemLister) Windows() ([]Window, error) { return nil, nil }
