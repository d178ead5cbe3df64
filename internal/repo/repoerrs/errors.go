package repoerrs

import "errors"

var ErrAlreadyExists = errors.New("already exists")
