package tcplistener

import (
	"net"
	"sync"
	"time"

	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

const tcpReadBufferMax = 8 * 1024 * 1024 // Less than /proc/sys/net/ipv4/tcp_mem
const tcpReadBufferMin = 65536

var tcpLastReadBufferSize = tcpReadBufferMax // shared for all connections; a cached hint, no sync needed

// recordConsumerFactory creates the consumer of records for a new connection
type recordConsumerFactory func(connLogger logger.Logger) recordConsumer

// tcpLineListener is a TCP Listener for line-based, request-only text protocol, with support for multi-line records.
//
// - Incoming bytes are buffered until a line can be recognized by newline.
//
// - Incoming lines are buffered until the latest line is recognized as the start of another record, or a flush timeout passes.
//
// - The resulting records don't contain the trailing newline, but can have newlines in the middle.
//
// There is no request confirmation and the protocol is inherently unreliable.
type tcpLineListener struct {
	logger          logger.Logger
	socket          *net.TCPListener
	address         string
	testRecordStart headTester
	newConsumer     recordConsumerFactory
	stopRequest     channels.Awaitable
	taskCounter     *sync.WaitGroup    // tracks connection tasks and the listener task itself
	stopped         channels.Awaitable // signaled when both listener and all connections have come to stop
}

// newTCPLineListener creates a socket listening on the given TCP address
//
// The given address may use port zero to have the port assigned by OS. The final address is available from Address()
func newTCPLineListener(parentLogger logger.Logger, address string, testRecordStart headTester,
	newConsumer recordConsumerFactory, stopRequest channels.Awaitable) (*tcpLineListener, error) {

	socket, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	boundAddr := socket.Addr().String()

	lsnrLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "TCPLineListener",
		defs.LabelAddress:   boundAddr,
	})
	lsnrLogger.Info("start listening")

	// one for the listener itself; WaitGroupAwaitable would end immediately at zero
	taskCounter := &sync.WaitGroup{}
	taskCounter.Add(1)

	return &tcpLineListener{
		logger:          lsnrLogger,
		socket:          socket.(*net.TCPListener),
		address:         boundAddr,
		testRecordStart: testRecordStart,
		newConsumer:     newConsumer,
		stopRequest:     stopRequest,
		taskCounter:     taskCounter,
		stopped:         channels.NewWaitGroupAwaitable(taskCounter),
	}, nil
}

func (lsnr *tcpLineListener) Start() {
	go lsnr.run()
}

func (lsnr *tcpLineListener) Stopped() channels.Awaitable {
	return lsnr.stopped
}

func (lsnr *tcpLineListener) Address() string {
	return lsnr.address
}

func (lsnr *tcpLineListener) run() {
	abortListener := channels.NewSignalAwaitable()
	go func() {
		channels.AnyAwaitables(lsnr.stopRequest, abortListener).Next(func() {
			if abortListener.Peek() {
				lsnr.logger.Info("abort listener")
			} else {
				lsnr.logger.Info("close listener on stop request")
			}
		}).WaitForever()
		lsnr.socket.Close()
	}()

	lsnr.logger.Info("start accept loop")
	for {
		conn, err := lsnr.socket.AcceptTCP()
		if err != nil {
			if !lsnr.stopRequest.Peek() || !util.IsNetworkClosed(err) {
				lsnr.logger.Error("accept() error: ", err)
				abortListener.Signal()
			}
			break
		}

		connLogger := lsnr.logger.WithFields(logger.Fields{
			defs.LabelPart:   "connection",
			defs.LabelClient: conn.RemoteAddr().String(),
		})
		connLogger.Info("accepted connection")
		lsnr.taskCounter.Add(1)
		go lsnr.runConnection(connLogger, conn)
	}
	lsnr.logger.Info("end accept loop")

	// connections may still be open
	lsnr.taskCounter.Done()
}

func (lsnr *tcpLineListener) runConnection(connLogger logger.Logger, conn *net.TCPConn) {
	defer lsnr.taskCounter.Done()

	connAborter := lsnr.launchConnectionCloser(connLogger, conn)

	// short read timeout for periodic flushing of multi-line records
	connReader := lsnr.createConnectionReader(connLogger, conn)
	mlineReader := newMultiLineReader(connReader.Read, lsnr.testRecordStart,
		defs.ListenerLineBufferSize, defs.InputLogMaxMessageBytes, lsnr.newConsumer(connLogger))

	var prevDeadline time.Time
	for {
		err := mlineReader.Read()
		if err == nil {
			if prevDeadline.IsZero() {
				prevDeadline = connReader.ReadDeadline()
			} else if connReader.ReadDeadline() != prevDeadline {
				mlineReader.Flush()
				prevDeadline = connReader.ReadDeadline()
			}
			continue
		}
		if util.IsNetworkTimeout(err) {
			mlineReader.Flush()
			continue
		}
		mlineReader.FlushAll()
		if util.IsNetworkClosed(err) && lsnr.stopRequest.Peek() {
			connLogger.Info("closed by stop request")
		} else {
			if !util.IsNetworkClosed(err) {
				connLogger.Warn("read() error: ", err)
			}
			connAborter.Signal()
		}
		break
	}
	connLogger.Info("ended")
}

func (lsnr *tcpLineListener) launchConnectionCloser(connLogger logger.Logger, conn *net.TCPConn) *channels.SignalAwaitable {
	abortConn := channels.NewSignalAwaitable()
	go func() {
		channels.AnyAwaitables(lsnr.stopRequest, abortConn).Next(func() {
			if abortConn.Peek() {
				connLogger.Debug("close connection")
			} else {
				connLogger.Info("close connection on stop request")
			}
		}).WaitForever()
		conn.Close()
	}()
	return abortConn
}

func (lsnr *tcpLineListener) createConnectionReader(connLogger logger.Logger, conn *net.TCPConn) *util.NetConnReader {
	if err := conn.SetKeepAlive(true); err != nil {
		connLogger.Warnf("error enabling keep-alive: %s", err.Error())
	}

	if sz, err := util.TrySetTCPReadBuffer(conn, tcpLastReadBufferSize, tcpReadBufferMin); err != nil {
		connLogger.Warnf("error changing buffer size: %s", err.Error())
	} else {
		connLogger.Debugf("set TCP buffer size: %d", sz)
		tcpLastReadBufferSize = sz
	}

	return util.WrapNetConnReader(conn, defs.InputFlushInterval)
}
