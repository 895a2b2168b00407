package handler

import (
	"encoding/json"
	"net/http"

	"github.com/m-lab/go/rtx"

	v1 "github.com/m-lab/tokenauth/api/v1"
	"github.com/m-lab/tokenauth/auth"
)

// Whoami reports the principal bound to the request by Intercept.
func Whoami(rw http.ResponseWriter, req *http.Request) {
	result := v1.WhoamiResult{Anonymous: true}
	if p, ok := auth.FromContext(req.Context()); ok {
		authorities := make([]string, len(p.Authorities))
		for i, a := range p.Authorities {
			authorities[i] = string(a)
		}
		result = v1.WhoamiResult{
			Principal: &v1.Principal{
				ID:          p.ID,
				Authorities: authorities,
			},
		}
	}
	writeResult(rw, http.StatusOK, &result)
}

func writeResult(rw http.ResponseWriter, status int, result interface{}) {
	b, err := json.MarshalIndent(result, "", "  ")
	// Errors are only possible when marshalling incompatible types, like functions.
	rtx.PanicOnError(err, "Failed to format result")
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(b)
}
