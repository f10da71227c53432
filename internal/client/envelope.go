package client

import (
	"rpgpanel/internal/config"
	apperrors "rpgpanel/internal/errors"
)

// Unwrap applies an endpoint's envelope convention to a 2xx body. With a
// success field configured, anything but a literal true is a rejection,
// including bodies that are not objects at all.
func (r *Response) Unwrap(env config.Envelope) (any, error) {
	if r == nil {
		return nil, nil
	}
	body := r.Body

	if env.SuccessField != "" {
		obj, ok := body.(map[string]any)
		if !ok {
			return nil, apperrors.Rejected("malformed response")
		}
		if success, ok := obj[env.SuccessField].(bool); !ok || !success {
			return nil, apperrors.Rejected(messageFrom(obj, env.MessageField, 0))
		}
	}

	if env.PayloadKey == "" {
		return body, nil
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, apperrors.Rejected("malformed response")
	}
	return obj[env.PayloadKey], nil
}
