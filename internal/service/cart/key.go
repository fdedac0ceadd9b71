package cart

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
)

// Key derives the cart key for a product and its selected options. json.Marshal sorts map
// keys, so the key does not depend on the order options were supplied in.
func Key(productID string, options map[string]interface{}) string {
	if options == nil {
		options = map[string]interface{}{}
	}
	payload, err := json.Marshal(struct {
		Options   map[string]interface{} `json:"options"`
		ProductID string                 `json:"productId"`
	}{Options: options, ProductID: productID})
	if err != nil {
		payload = []byte(productID)
	}
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}
