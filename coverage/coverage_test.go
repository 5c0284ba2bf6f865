package coverage

import (
	chainTypes "github.com/kevin-valerio/phink/chain/types"
)

func fakeResponses() []chainTypes.Response {
	return []chainTypes.Response{
		{DebugOutput: []byte("entering fn COV=1 COV=2")},
		{DebugOutput: []byte("COV=2 COV=3")},
	}
}
