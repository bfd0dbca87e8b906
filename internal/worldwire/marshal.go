package worldwire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Marshaling is hand-written on top of protowire. Zero values are omitted,
// repeated varint fields are packed, and decoders skip unknown fields so a
// newer simulator does not break older builds.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendInt64List(b []byte, num protowire.Number, vs []int64) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return appendMessageField(b, num, packed)
}

// unmarshalFields walks the fields of b. fn returns the number of payload
// bytes it consumed, or 0 to have the field skipped as unknown.
func unmarshalFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
		}
		b = b[m:]
	}
	return nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return string(v), n, nil
}

func consumeMessage(b []byte, fn func([]byte) error) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := fn(v); err != nil {
		return 0, err
	}
	return n, nil
}

// consumeInt64List accepts both packed and unpacked encodings.
func consumeInt64List(dst []int64, typ protowire.Type, b []byte) ([]int64, int, error) {
	if typ == protowire.BytesType {
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return dst, 0, protowire.ParseError(n)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return dst, 0, protowire.ParseError(m)
			}
			dst = append(dst, int64(v))
			packed = packed[m:]
		}
		return dst, n, nil
	}
	v, n, err := consumeVarint(b)
	if err != nil {
		return dst, 0, err
	}
	return append(dst, int64(v)), n, nil
}

func (w Warehouse) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(w.ID))
	b = appendVarintField(b, 2, uint64(w.X))
	b = appendVarintField(b, 3, uint64(w.Y))
	return b
}

func (w *Warehouse) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n, err := consumeVarint(b)
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			w.ID = int64(v)
		case 2:
			w.X = int64(v)
		case 3:
			w.Y = int64(v)
		default:
			return 0, nil
		}
		return n, nil
	})
}

// Marshal encodes the handshake request.
func (c *Connect) Marshal() []byte {
	var b []byte
	b = appendBoolField(b, 1, c.IsRequester)
	if c.TargetID != nil {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*c.TargetID))
	}
	for _, w := range c.InitialWarehouses {
		b = appendMessageField(b, 3, w.appendTo(nil))
	}
	return b
}

// Unmarshal decodes the handshake request.
func (c *Connect) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			c.IsRequester = v != 0
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			id := int64(v)
			c.TargetID = &id
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			var w Warehouse
			n, err := consumeMessage(b, w.unmarshal)
			if err != nil {
				return 0, err
			}
			c.InitialWarehouses = append(c.InitialWarehouses, w)
			return n, nil
		}
		return 0, nil
	})
}

// Marshal encodes the handshake reply.
func (r *ConnectReply) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(r.TargetID))
	b = appendStringField(b, 2, r.Result)
	return b
}

// Unmarshal decodes the handshake reply.
func (r *ConnectReply) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			r.TargetID = int64(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			r.Result = s
			return n, nil
		}
		return 0, nil
	})
}

func (it Item) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(it.ID))
	b = appendStringField(b, 2, it.Description)
	b = appendVarintField(b, 3, uint64(it.Count))
	return b
}

func (it *Item) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			it.ID = int64(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			it.Description = s
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			it.Count = int64(v)
			return n, nil
		}
		return 0, nil
	})
}

func (c BuyCmd) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(c.WarehouseID))
	b = appendVarintField(b, 2, uint64(c.ProductID))
	b = appendStringField(b, 3, c.Description)
	b = appendVarintField(b, 4, uint64(c.Quantity))
	b = appendVarintField(b, 5, uint64(c.Seq))
	return b
}

func (c *BuyCmd) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 3 && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			c.Description = s
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				c.WarehouseID = int64(v)
			case 2:
				c.ProductID = int64(v)
			case 4:
				c.Quantity = int64(v)
			case 5:
				c.Seq = int64(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		return 0, nil
	})
}

func (c PackCmd) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(c.WarehouseID))
	for _, it := range c.Items {
		b = appendMessageField(b, 2, it.appendTo(nil))
	}
	b = appendVarintField(b, 3, uint64(c.ShipmentID))
	b = appendVarintField(b, 4, uint64(c.Seq))
	return b
}

func (c *PackCmd) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 2 && typ == protowire.BytesType:
			var it Item
			n, err := consumeMessage(b, it.unmarshal)
			if err != nil {
				return 0, err
			}
			c.Items = append(c.Items, it)
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				c.WarehouseID = int64(v)
			case 3:
				c.ShipmentID = int64(v)
			case 4:
				c.Seq = int64(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		return 0, nil
	})
}

func (c LoadCmd) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(c.WarehouseID))
	b = appendVarintField(b, 2, uint64(c.TruckID))
	b = appendVarintField(b, 3, uint64(c.ShipmentID))
	b = appendVarintField(b, 4, uint64(c.Seq))
	return b
}

func (c *LoadCmd) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n, err := consumeVarint(b)
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			c.WarehouseID = int64(v)
		case 2:
			c.TruckID = int64(v)
		case 3:
			c.ShipmentID = int64(v)
		case 4:
			c.Seq = int64(v)
		default:
			return 0, nil
		}
		return n, nil
	})
}

func (c QueryCmd) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(c.PackageID))
	b = appendVarintField(b, 2, uint64(c.Seq))
	return b
}

func (c *QueryCmd) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n, err := consumeVarint(b)
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			c.PackageID = int64(v)
		case 2:
			c.Seq = int64(v)
		default:
			return 0, nil
		}
		return n, nil
	})
}

// Marshal encodes one outbound command batch.
func (m *CommandBatch) Marshal() []byte {
	var b []byte
	for _, c := range m.Buys {
		b = appendMessageField(b, 1, c.appendTo(nil))
	}
	for _, c := range m.Packs {
		b = appendMessageField(b, 2, c.appendTo(nil))
	}
	for _, c := range m.Loads {
		b = appendMessageField(b, 3, c.appendTo(nil))
	}
	for _, c := range m.Queries {
		b = appendMessageField(b, 4, c.appendTo(nil))
	}
	if m.SimSpeed != nil {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*m.SimSpeed))
	}
	b = appendBoolField(b, 6, m.Disconnect)
	b = appendInt64List(b, 7, m.Acks)
	return b
}

// Unmarshal decodes one outbound command batch.
func (m *CommandBatch) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			var c BuyCmd
			n, err := consumeMessage(b, c.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Buys = append(m.Buys, c)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			var c PackCmd
			n, err := consumeMessage(b, c.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Packs = append(m.Packs, c)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			var c LoadCmd
			n, err := consumeMessage(b, c.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Loads = append(m.Loads, c)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			var c QueryCmd
			n, err := consumeMessage(b, c.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Queries = append(m.Queries, c)
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			speed := uint32(v)
			m.SimSpeed = &speed
			return n, nil
		case num == 6 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			m.Disconnect = v != 0
			return n, nil
		case num == 7:
			acks, n, err := consumeInt64List(m.Acks, typ, b)
			if err != nil {
				return 0, err
			}
			m.Acks = acks
			return n, nil
		}
		return 0, nil
	})
}

func (e ArrivedEvent) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(e.WarehouseID))
	for _, it := range e.Items {
		b = appendMessageField(b, 2, it.appendTo(nil))
	}
	b = appendVarintField(b, 3, uint64(e.Seq))
	return b
}

func (e *ArrivedEvent) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 2 && typ == protowire.BytesType:
			var it Item
			n, err := consumeMessage(b, it.unmarshal)
			if err != nil {
				return 0, err
			}
			e.Items = append(e.Items, it)
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				e.WarehouseID = int64(v)
			case 3:
				e.Seq = int64(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		return 0, nil
	})
}

func (e ReadyEvent) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(e.ShipmentID))
	b = appendVarintField(b, 2, uint64(e.Seq))
	return b
}

func (e *ReadyEvent) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n, err := consumeVarint(b)
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			e.ShipmentID = int64(v)
		case 2:
			e.Seq = int64(v)
		default:
			return 0, nil
		}
		return n, nil
	})
}

func (e LoadedEvent) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(e.ShipmentID))
	b = appendVarintField(b, 2, uint64(e.Seq))
	return b
}

func (e *LoadedEvent) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n, err := consumeVarint(b)
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			e.ShipmentID = int64(v)
		case 2:
			e.Seq = int64(v)
		default:
			return 0, nil
		}
		return n, nil
	})
}

func (p PackageStatus) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(p.PackageID))
	b = appendStringField(b, 2, p.Status)
	b = appendVarintField(b, 3, uint64(p.Seq))
	return b
}

func (p *PackageStatus) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 2 && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			p.Status = s
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				p.PackageID = int64(v)
			case 3:
				p.Seq = int64(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		return 0, nil
	})
}

func (e ErrorEvent) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, uint64(e.OriginSeq))
	b = appendStringField(b, 2, e.Message)
	b = appendVarintField(b, 3, uint64(e.Seq))
	return b
}

func (e *ErrorEvent) unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 2 && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			e.Message = s
			return n, nil
		case typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				e.OriginSeq = int64(v)
			case 3:
				e.Seq = int64(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		return 0, nil
	})
}

// Marshal encodes one inbound response batch.
func (m *ResponseBatch) Marshal() []byte {
	var b []byte
	b = appendInt64List(b, 1, m.Acks)
	for _, e := range m.Arrived {
		b = appendMessageField(b, 2, e.appendTo(nil))
	}
	for _, e := range m.Ready {
		b = appendMessageField(b, 3, e.appendTo(nil))
	}
	for _, e := range m.Loaded {
		b = appendMessageField(b, 4, e.appendTo(nil))
	}
	for _, p := range m.PackageStatus {
		b = appendMessageField(b, 5, p.appendTo(nil))
	}
	for _, e := range m.Errors {
		b = appendMessageField(b, 6, e.appendTo(nil))
	}
	return b
}

// Unmarshal decodes one inbound response batch.
func (m *ResponseBatch) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1:
			acks, n, err := consumeInt64List(m.Acks, typ, b)
			if err != nil {
				return 0, err
			}
			m.Acks = acks
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			var e ArrivedEvent
			n, err := consumeMessage(b, e.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Arrived = append(m.Arrived, e)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			var e ReadyEvent
			n, err := consumeMessage(b, e.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Ready = append(m.Ready, e)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			var e LoadedEvent
			n, err := consumeMessage(b, e.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Loaded = append(m.Loaded, e)
			return n, nil
		case num == 5 && typ == protowire.BytesType:
			var p PackageStatus
			n, err := consumeMessage(b, p.unmarshal)
			if err != nil {
				return 0, err
			}
			m.PackageStatus = append(m.PackageStatus, p)
			return n, nil
		case num == 6 && typ == protowire.BytesType:
			var e ErrorEvent
			n, err := consumeMessage(b, e.unmarshal)
			if err != nil {
				return 0, err
			}
			m.Errors = append(m.Errors, e)
			return n, nil
		}
		return 0, nil
	})
}
