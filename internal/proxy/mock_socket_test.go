// Hand-written in the idiom go.uber.org/mock's mockgen generates, for
// the Socket capability surface.
package proxy

import (
	"net"
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockSocket is a mock of the Socket interface.
type MockSocket struct {
	ctrl     *gomock.Controller
	recorder *MockSocketMockRecorder
}

// MockSocketMockRecorder is the mock recorder for MockSocket.
type MockSocketMockRecorder struct {
	mock *MockSocket
}

// NewMockSocket creates a new mock instance.
func NewMockSocket(ctrl *gomock.Controller) *MockSocket {
	mock := &MockSocket{ctrl: ctrl}
	mock.recorder = &MockSocketMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSocket) EXPECT() *MockSocketMockRecorder {
	return m.recorder
}

func (m *MockSocket) Bind(addr string) error {
	ret := m.ctrl.Call(m, "Bind", addr)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSocketMockRecorder) Bind(addr any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Bind", reflect.TypeOf((*MockSocket)(nil).Bind), addr)
}

func (m *MockSocket) Listen() error {
	ret := m.ctrl.Call(m, "Listen")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSocketMockRecorder) Listen() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Listen", reflect.TypeOf((*MockSocket)(nil).Listen))
}

func (m *MockSocket) Connect(addr string) error {
	ret := m.ctrl.Call(m, "Connect", addr)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSocketMockRecorder) Connect(addr any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Connect", reflect.TypeOf((*MockSocket)(nil).Connect), addr)
}

func (m *MockSocket) Close() error {
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSocketMockRecorder) Close() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSocket)(nil).Close))
}

func (m *MockSocket) GetRxAvailable() int {
	ret := m.ctrl.Call(m, "GetRxAvailable")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockSocketMockRecorder) GetRxAvailable() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetRxAvailable", reflect.TypeOf((*MockSocket)(nil).GetRxAvailable))
}

func (m *MockSocket) GetTxAvailable() int {
	ret := m.ctrl.Call(m, "GetTxAvailable")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockSocketMockRecorder) GetTxAvailable() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetTxAvailable", reflect.TypeOf((*MockSocket)(nil).GetTxAvailable))
}

func (m *MockSocket) Recv(maxBytes int) (Packet, error) {
	ret := m.ctrl.Call(m, "Recv", maxBytes)
	ret0, _ := ret[0].(Packet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSocketMockRecorder) Recv(maxBytes any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Recv", reflect.TypeOf((*MockSocket)(nil).Recv), maxBytes)
}

func (m *MockSocket) Send(p Packet) (int, error) {
	ret := m.ctrl.Call(m, "Send", p)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSocketMockRecorder) Send(p any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockSocket)(nil).Send), p)
}

func (m *MockSocket) SetAcceptCallback(filter AcceptFilter, established func(Socket, net.IP)) {
	m.ctrl.Call(m, "SetAcceptCallback", filter, established)
}

func (mr *MockSocketMockRecorder) SetAcceptCallback(filter, established any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetAcceptCallback", reflect.TypeOf((*MockSocket)(nil).SetAcceptCallback), filter, established)
}

func (m *MockSocket) SetRecvCallback(fn func(Socket)) {
	m.ctrl.Call(m, "SetRecvCallback", fn)
}

func (mr *MockSocketMockRecorder) SetRecvCallback(fn any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetRecvCallback", reflect.TypeOf((*MockSocket)(nil).SetRecvCallback), fn)
}

func (m *MockSocket) SetSendCallback(fn func(Socket)) {
	m.ctrl.Call(m, "SetSendCallback", fn)
}

func (mr *MockSocketMockRecorder) SetSendCallback(fn any) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetSendCallback", reflect.TypeOf((*MockSocket)(nil).SetSendCallback), fn)
}

func (m *MockSocket) SendEmptyPacket() error {
	ret := m.ctrl.Call(m, "SendEmptyPacket")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSocketMockRecorder) SendEmptyPacket() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendEmptyPacket", reflect.TypeOf((*MockSocket)(nil).SendEmptyPacket))
}

func (m *MockSocket) PeerIP() net.IP {
	ret := m.ctrl.Call(m, "PeerIP")
	ret0, _ := ret[0].(net.IP)
	return ret0
}

func (mr *MockSocketMockRecorder) PeerIP() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PeerIP", reflect.TypeOf((*MockSocket)(nil).PeerIP))
}

var _ Socket = (*MockSocket)(nil)
