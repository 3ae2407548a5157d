package planner

// TargetIndex tracks the filenames claimed in each target folder during one
// planning run. Files planned earlier keep their names; later files that
// collide are renamed. A TargetIndex is not safe for concurrent use.
type TargetIndex struct {
	claimed map[string]map[string]struct{}
}

// NewTargetIndex returns an empty index.
func NewTargetIndex() *TargetIndex {
	return &TargetIndex{claimed: make(map[string]map[string]struct{})}
}

// Claim resolves filename against the names already taken in targetFolder,
// records the result and returns it.
func (ix *TargetIndex) Claim(targetFolder, filename, sourcePath string) DuplicateResult {
	names, ok := ix.claimed[targetFolder]
	if !ok {
		names = make(map[string]struct{})
		ix.claimed[targetFolder] = names
	}

	res := ResolveFilenameDuplicate(filename, sourcePath, names)
	names[res.Filename] = struct{}{}
	return res
}

// Folders returns the number of distinct target folders seen.
func (ix *TargetIndex) Folders() int {
	return len(ix.claimed)
}
