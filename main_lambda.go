//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/config"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type optimizeRequest struct {
	Context   json.RawMessage `json:"context"`
	TopK      int             `json:"topK"`
	Tolerance *float64        `json:"tolerance"`
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req optimizeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if len(req.Context) == 0 {
		return errResp(400, "missing context field")
	}

	cfg := config.Default()
	if req.TopK > 0 {
		cfg.TopK = req.TopK
	}
	if req.Tolerance != nil {
		cfg.Tolerance = *req.Tolerance
	}

	cc, err := loadInput(req.Context, cfg)
	if err != nil {
		if errors.Is(err, combat.ErrMalformed) {
			return errResp(422, err.Error())
		}
		return errResp(400, err.Error())
	}

	out, err := runOptimize(ctx, req.Context, cc, cfg)
	if err != nil {
		return errResp(500, err.Error())
	}
	respJSON, err := json.Marshal(out)
	if err != nil {
		return errResp(500, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
