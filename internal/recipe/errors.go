package recipe

import "errors"

var ErrInvalidRecipe = errors.New("invalid recipe")
