package shell

import (
	"os"

	"github.com/democosm/hcfabric/hctree"
)

// SaveDefault writes every writable scalar under top to the hard-coded
// default.state file, matching hcconsole.cc's SaveCmdProc.
func SaveDefault(top *hctree.Container) error {
	f, err := os.Create(defaultStateFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return hctree.SaveValues(top, f)
}

// LoadDefault replays default.state through ex, matching
// hcconsole.cc's LoadCmdProc.
func LoadDefault(ex hctree.LineExecutor) error {
	f, err := os.Open(defaultStateFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return hctree.LoadValues(ex, f)
}
