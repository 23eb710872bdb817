package decode

// Open selects and initializes a backend from table, trying order[0] and,
// if its Init fails for any reason, falling back once to order[1]. It never
// retries beyond the second attempt.
func Open(table Table, order []Kind, opts Options) (Backend, Kind, error) {
	if len(order) == 0 {
		return nil, 0, errDecoderNotFound
	}

	first := order[0]
	b := table[first]()
	if err := b.Init(opts); err == nil {
		return b, first, nil
	} else if len(order) < 2 {
		return nil, 0, err
	}

	second := order[1]
	fb := table[second]()
	if err := fb.Init(opts); err != nil {
		return nil, 0, err
	}
	return fb, second, nil
}
