package deploy

import "github.com/blackwell-systems/cdqt/internal/layout"

// ApplyOverlays merges each overlay directory's tree into out, in
// order, so a later overlay's files replace an earlier one's — except
// where the idempotent copier skips a file because the existing copy
// has the same size and is not older than the source. Symlink
// preservation and idempotent regular-file copying come from
// layout.CopyTree, which already implements both rules.
func ApplyOverlays(overlays []string, out string) error {
	for _, overlay := range overlays {
		if err := layout.CopyTree(overlay, out); err != nil {
			return err
		}
	}
	return nil
}
