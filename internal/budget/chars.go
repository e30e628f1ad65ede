package budget

// CharBudget caps the total number of characters sent for analysis across
// one scan. A Limit of zero or less means unlimited.
//
// Checks are asymmetric. A file is only skipped up front when some budget is
// already used, and the first file of a scan keeps sending chunks until the
// limit is reached. Later files stop before a chunk that would cross it.
type CharBudget struct {
	Limit int

	used            int
	usedAtFileStart int
}

// NewCharBudget creates a budget with the given limit
func NewCharBudget(limit int) *CharBudget {
	return &CharBudget{Limit: limit}
}

// Unlimited reports whether the budget imposes no cap
func (b *CharBudget) Unlimited() bool {
	return b.Limit <= 0
}

// Reached reports whether consumption has hit the limit
func (b *CharBudget) Reached() bool {
	return !b.Unlimited() && b.used >= b.Limit
}

// AllowFile reports whether a file of n characters may start.
// A file is refused only when some budget has been used, the limit is not
// yet reached, and the whole file would push usage past the limit.
func (b *CharBudget) AllowFile(n int) bool {
	if b.Unlimited() {
		return true
	}
	if b.used > 0 && b.used < b.Limit && b.used+n > b.Limit {
		return false
	}
	return true
}

// BeginFile marks the start of a new file
func (b *CharBudget) BeginFile() {
	b.usedAtFileStart = b.used
}

// AllowChunk reports whether a chunk of n characters may be sent.
// Within the first file of a scan a chunk is refused only once the limit is
// reached; in later files a chunk that would cross the limit is refused.
func (b *CharBudget) AllowChunk(n int) bool {
	if b.Unlimited() {
		return true
	}
	if b.Reached() {
		return false
	}
	if b.usedAtFileStart > 0 && b.used+n > b.Limit {
		return false
	}
	return true
}

// Consume records n characters as sent
func (b *CharBudget) Consume(n int) {
	b.used += n
}

// Used returns the characters consumed so far
func (b *CharBudget) Used() int {
	return b.used
}

// Remaining returns the characters left, or -1 when unlimited
func (b *CharBudget) Remaining() int {
	if b.Unlimited() {
		return -1
	}
	if b.used >= b.Limit {
		return 0
	}
	return b.Limit - b.used
}
