package database

import (
	"github.com/stretchr/testify/mock"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRoomStore) SaveRoom(name string, data []byte) error {
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockRoomStore) LoadRoom(name string) ([]byte, error) {
	args := m.Called(name)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) DeleteRoom(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockRoomStore) SaveSubtitle(hash string, data []byte) error {
	args := m.Called(hash, data)
	return args.Error(0)
}

func (m *MockRoomStore) GetSubtitle(hash string) ([]byte, error) {
	args := m.Called(hash)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
