package core

import (
	"testing"

	"picoclock/protocol"
)

type captureSender struct {
	ids     []uint16
	payload [][]byte
}

func (c *captureSender) SendCommand(cmdID uint16, args func(output protocol.OutputBuffer)) {
	out := protocol.NewScratchOutput()
	if args != nil {
		args(out)
	}
	c.ids = append(c.ids, cmdID)
	c.payload = append(c.payload, append([]byte(nil), out.Result()...))
}

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var called bool
	id := registry.Register("get_time", "", func(data *[]byte) error {
		called = true
		return nil
	})

	if id != 0 {
		t.Errorf("Expected first command to have ID 0, got %d", id)
	}

	cmd, ok := registry.GetCommand(id)
	if !ok {
		t.Fatal("Failed to retrieve registered command")
	}
	if cmd.Name != "get_time" {
		t.Errorf("Expected command name 'get_time', got '%s'", cmd.Name)
	}

	var data []byte
	if err := registry.Dispatch(id, &data); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if !called {
		t.Error("Command handler was not called")
	}

	if err := registry.Dispatch(999, &data); err != ErrUnknownCommand {
		t.Error("Expected error for unknown command ID")
	}
}

func TestCommandRegistryDuplicateName(t *testing.T) {
	registry := NewCommandRegistry()

	id1 := registry.Register("set_time", "hour=%c", func(data *[]byte) error { return nil })
	id2 := registry.Register("set_time", "hour=%c", func(data *[]byte) error { return nil })

	if id1 != id2 {
		t.Errorf("Expected duplicate registration to return %d, got %d", id1, id2)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 command, got %d", registry.Count())
	}
}

func TestDispatchResponseIsRejected(t *testing.T) {
	registry := NewCommandRegistry()
	id := registry.RegisterResponse("time", "hour=%c")

	var data []byte
	if err := registry.Dispatch(id, &data); err == nil {
		t.Error("Expected dispatching a response to fail")
	}
}

func TestCommandWithArguments(t *testing.T) {
	registry := NewCommandRegistry()

	var received uint32
	id := registry.Register("pause_alarms", "hours=%c", func(data *[]byte) error {
		val, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return err
		}
		received = val
		return nil
	})

	output := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(output, 12345)
	data := output.Result()

	if err := registry.Dispatch(id, &data); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if received != 12345 {
		t.Errorf("Expected value 12345, got %d", received)
	}
}

func TestSendResponse(t *testing.T) {
	registry := NewCommandRegistry()
	registry.RegisterResponse("identify_response", "offset=%u data=%*s")
	timeID := registry.RegisterResponse("time", "hour=%c")

	if err := registry.SendResponse("time", nil); err != ErrNoResponseChannel {
		t.Errorf("Expected ErrNoResponseChannel, got %v", err)
	}

	sender := &captureSender{}
	registry.SetSender(sender)

	err := registry.SendResponse("time", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, 7)
	})
	if err != nil {
		t.Fatalf("SendResponse failed: %v", err)
	}
	if len(sender.ids) != 1 || sender.ids[0] != timeID {
		t.Fatalf("Expected one message with ID %d, got %v", timeID, sender.ids)
	}
	if len(sender.payload[0]) != 1 || sender.payload[0][0] != 7 {
		t.Errorf("Expected payload [7], got %v", sender.payload[0])
	}

	if err := registry.SendResponse("missing", nil); err != ErrResponseNotFound {
		t.Errorf("Expected ErrResponseNotFound, got %v", err)
	}
}

func TestGetCommandsAndResponses(t *testing.T) {
	registry := NewCommandRegistry()
	registry.RegisterResponse("identify_response", "offset=%u data=%*s")
	registry.Register("identify", "offset=%u count=%c", func(data *[]byte) error { return nil })
	registry.Register("get_status", "", func(data *[]byte) error { return nil })

	commands, responses := registry.GetCommandsAndResponses()

	if id, ok := commands["identify offset=%u count=%c"]; !ok || id != 1 {
		t.Errorf("Expected identify with ID 1, got %d (ok=%v)", id, ok)
	}
	if id, ok := commands["get_status"]; !ok || id != 2 {
		t.Errorf("Expected get_status with ID 2, got %d (ok=%v)", id, ok)
	}
	if id, ok := responses["identify_response offset=%u data=%*s"]; !ok || id != 0 {
		t.Errorf("Expected identify_response with ID 0, got %d (ok=%v)", id, ok)
	}
}
