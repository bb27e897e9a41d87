package profile

import "os"

// readFileIfExists returns (nil, nil) when path doesn't exist yet, rather
// than forcing every caller to special-case a fresh install with no
// profile store on disk.
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
