package app

import (
	"os"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		go a.SchedCatalogRefreshTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		days := a.ConfigMgr().ShopSettings().OprLogRetentionDays
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(days))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGaugeFloat("system_cpu_percent", _cpuuse[0])
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGaugeFloat("system_mem_percent", _meminfo.UsedPercent)
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("process_rss_bytes", int64(meminfo.RSS))
	}

	metrics.SetGauge("process_goroutines", int64(runtime.NumGoroutine()))
}

// SchedCatalogRefreshTask keeps the in-memory catalog warm so a quiet
// night does not serve a cold cache to the first morning visitor.
func (a *Application) SchedCatalogRefreshTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if a.catalogSvc == nil {
		return
	}
	if err := a.catalogSvc.Refresh(); err != nil {
		zap.L().Error("catalog refresh failed", zap.Error(err))
	}
}
