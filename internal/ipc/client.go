package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks that the daemon answers on the socket.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("V2S.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("V2S.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("V2S.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue adds the given paths to the transcription queue.
func (c *Client) Enqueue(paths []string) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	req := EnqueueRequest{Paths: paths}
	if err := c.client.Call("V2S.Enqueue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueList returns queued jobs optionally filtered by statuses.
func (c *Client) QueueList(statuses []string) (*QueueListResponse, error) {
	var resp QueueListResponse
	req := QueueListRequest{Statuses: statuses}
	if err := c.client.Call("V2S.QueueList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueRemove removes a single pending job by id.
func (c *Client) QueueRemove(id string) (*QueueRemoveResponse, error) {
	var resp QueueRemoveResponse
	req := QueueRemoveRequest{ID: id}
	if err := c.client.Call("V2S.QueueRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueReorder moves a pending job to a new queue position.
func (c *Client) QueueReorder(from, to int) (*QueueReorderResponse, error) {
	var resp QueueReorderResponse
	req := QueueReorderRequest{From: from, To: to}
	if err := c.client.Call("V2S.QueueReorder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClear removes all pending jobs from the queue.
func (c *Client) QueueClear() (*QueueClearResponse, error) {
	var resp QueueClearResponse
	if err := c.client.Call("V2S.QueueClear", QueueClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartBatch begins processing the queued jobs.
func (c *Client) StartBatch() (*StartBatchResponse, error) {
	var resp StartBatchResponse
	if err := c.client.Call("V2S.StartBatch", StartBatchRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StatusUpdates returns queue events after the given sequence number.
func (c *Client) StatusUpdates(req StatusUpdatesRequest) (*StatusUpdatesResponse, error) {
	var resp StatusUpdatesResponse
	if err := c.client.Call("V2S.StatusUpdates", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SettingsGet retrieves the current transcription settings.
func (c *Client) SettingsGet() (*SettingsGetResponse, error) {
	var resp SettingsGetResponse
	if err := c.client.Call("V2S.SettingsGet", SettingsGetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SettingsSet updates one setting by key.
func (c *Client) SettingsSet(key, value string) (*SettingsSetResponse, error) {
	var resp SettingsSetResponse
	req := SettingsSetRequest{Key: key, Value: value}
	if err := c.client.Call("V2S.SettingsSet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PresetList returns the available subtitle presets.
func (c *Client) PresetList() (*PresetListResponse, error) {
	var resp PresetListResponse
	if err := c.client.Call("V2S.PresetList", PresetListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryList returns recently completed transcriptions.
func (c *Client) HistoryList(limit int) (*HistoryListResponse, error) {
	var resp HistoryListResponse
	req := HistoryListRequest{Limit: limit}
	if err := c.client.Call("V2S.HistoryList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineRestart stops and relaunches the transcription engine process.
func (c *Client) EngineRestart() (*EngineRestartResponse, error) {
	var resp EngineRestartResponse
	if err := c.client.Call("V2S.EngineRestart", EngineRestartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("V2S.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
