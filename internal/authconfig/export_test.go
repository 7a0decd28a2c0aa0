package authconfig

func (h *Holder) Reset() { h.reset() }

var ResetForTesting = resetForTesting
