package config

import (
	"strconv"
	"strings"

	"haa/model"
)

// decodeActions walks every numeric-string key in raw ("0".."MAX_ACTIONS-1")
// and every "w0".."w7" wildcard key, filling svc's Actions map and
// Wildcards slice (spec.md §6). Cross-service indices inside each action
// sub-array are resolved via model.ResolveRelative relative to svc.Index.
func decodeActions(svc *model.Service, raw obj) {
	for key, v := range raw {
		if strings.HasPrefix(key, "w") {
			if idx, err := strconv.Atoi(key[1:]); err == nil {
				decodeWildcard(svc, idx, v)
			}
			continue
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			continue // not an action-id key (service-specific field)
		}
		o, ok := asObj(v)
		if !ok {
			continue
		}
		decodeActionEntry(svc, id, o)
	}
}

func decodeActionEntry(svc *model.Service, id int, o obj) {
	entry := svc.EnsureAction(id)

	if a, ok := asArr(o["copy"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.Copy = append(entry.Copy, model.CopyAction{
				From: asInt(eo["from"], id),
				To:   asInt(eo["to"], id),
			})
		}
	}
	if a, ok := asArr(o["binary_out"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.Binary = append(entry.Binary, model.BinaryOutAction{
				ExtendedGPIO: asInt(eo["gpio"], 0),
				Value:        asBool(eo["value"], false),
				InchingMS:    asInt(eo["inching_ms"], 0),
			})
		}
	}
	if a, ok := asArr(o["serv_manager"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.ServMgr = append(entry.ServMgr, model.ServManagerAction{
				TargetService: model.ResolveRelative(svc.Index, asInt(eo["service"], 0)),
				Value:         asInt(eo["value"], 0),
			})
		}
	}
	if a, ok := asArr(o["system"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.System = append(entry.System, model.SystemAction{Kind: parseSystemActionKind(asString(eo["kind"], ""))})
		}
	}
	if a, ok := asArr(o["network"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			content := asString(eo["content"], "")
			entry.Network = append(entry.Network, model.NetworkAction{
				Raw:        asBool(eo["raw"], false),
				Method:     asString(eo["method"], "GET"),
				Host:       asString(eo["host"], ""),
				Port:       asInt(eo["port"], 80),
				Path:       asString(eo["path"], "/"),
				Content:    content,
				Template:   parseTemplate(content, svc.Index),
				ReadReply:  asBool(eo["read_reply"], false),
				TimeoutSec: asInt(eo["timeout_sec"], 5),
			})
		}
	}
	if a, ok := asArr(o["irrf"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.IRRF = append(entry.IRRF, model.IRRFAction{
				Raw:      asString(eo["raw"], ""),
				Protocol: asString(eo["protocol"], ""),
				Code:     asString(eo["code"], ""),
				FreqHz:   uint32(asInt(eo["freq_hz"], 38000)),
				Repeats:  asInt(eo["repeats"], 1),
				PauseMS:  asInt(eo["pause_ms"], 0),
			})
		}
	}
	if a, ok := asArr(o["uart"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.UART = append(entry.UART, model.UARTAction{
				Port:    asString(eo["port"], ""),
				Raw:     asBytes(eo["raw"], nil),
				Text:    asString(eo["text"], ""),
				PauseMS: asInt(eo["pause_ms"], 0),
			})
		}
	}
	if a, ok := asArr(o["pwm"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.PWM = append(entry.PWM, model.PWMAction{
				Channel:   asString(eo["channel"], ""),
				Duty:      uint16(asInt(eo["duty"], 0)),
				FreqHz:    uint32(asInt(eo["freq_hz"], 0)),
				Dithering: asBool(eo["dithering"], false),
			})
		}
	}
	if a, ok := asArr(o["set_ch"]); ok {
		for _, e := range a {
			eo, ok := asObj(e)
			if !ok {
				continue
			}
			entry.SetCh = append(entry.SetCh, model.SetChAction{
				SrcService: model.ResolveRelative(svc.Index, asInt(eo["src_service"], 0)),
				SrcCh:      asInt(eo["src_ch"], 0),
				DstService: model.ResolveRelative(svc.Index, asInt(eo["dst_service"], 0)),
				DstCh:      asInt(eo["dst_ch"], 0),
			})
		}
	}
}

func decodeWildcard(svc *model.Service, idx int, v any) {
	o, ok := asObj(v)
	if !ok {
		return
	}
	svc.Wildcards = append(svc.Wildcards, model.WildcardAction{
		Index:     idx,
		Threshold: asFloat(o["threshold"], 0),
		TargetID:  asInt(o["action"], 0),
		Repeat:    asBool(o["repeat"], false),
	})
}

func parseSystemActionKind(s string) model.SystemActionKind {
	switch s {
	case "ota":
		return model.SystemEnterOTA
	case "setup":
		return model.SystemEnterSetup
	case "wifi_reconnect":
		return model.SystemWifiReconnect
	default:
		return model.SystemReboot
	}
}

// parseTemplate pre-parses a network action's content field into
// literal/reference segments on the #IaaCc placeholder syntax (spec.md
// §6), so dispatch never re-parses the string. "aa" is a two-digit
// relative service offset, "cc" a two-digit characteristic index.
func parseTemplate(content string, currentService int) []model.TemplateSegment {
	var segs []model.TemplateSegment
	i := 0
	lit := strings.Builder{}
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, model.TemplateSegment{Literal: lit.String()})
			lit.Reset()
		}
	}
	// "#IaaCcc" literally: '#', 'I', two digits, 'C', two digits.
	for i < len(content) {
		if content[i] == '#' && i+7 <= len(content) &&
			content[i+1] == 'I' && isDigits(content[i+2:i+4]) &&
			content[i+4] == 'C' && isDigits(content[i+5:i+7]) {
			aa, _ := strconv.Atoi(content[i+2 : i+4])
			cc, _ := strconv.Atoi(content[i+5 : i+7])
			flush()
			svcIdx := aa
			if svcIdx == 0 {
				svcIdx = currentService // "#I00Cxx" means "this service"
			}
			segs = append(segs, model.TemplateSegment{
				IsRef:  true,
				SvcIdx: svcIdx,
				ChIdx:  cc,
			})
			i += 7
			continue
		}
		lit.WriteByte(content[i])
		i++
	}
	flush()
	return segs
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
